package config

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StateKey returns the default Redis key of the persisted workbook
func (r *CacheKeyStruct) StateKey() string {
	return "classbook:state"
}

// ICalFeedKey returns the cache key of a fetched calendar feed body
func (r *CacheKeyStruct) ICalFeedKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return fmt.Sprintf("classbook:ical:%s", hex.EncodeToString(sum[:]))
}

var CacheKey = NewCacheKeyStruct()
