package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/classbook-backend/internal/model"
)

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		record interface{}
		fields []string
	}{
		{
			name:   "valid student",
			record: model.Student{LastName: "Martin", FirstName: "Léa", ClassID: "c1"},
		},
		{
			name:   "student missing required fields",
			record: model.Student{FirstName: "Léa"},
			fields: []string{"lastName", "classId"},
		},
		{
			name:   "blank class name",
			record: model.Class{Name: "   "},
			fields: []string{"name"},
		},
		{
			name:   "room without rows",
			record: model.Room{Name: "B12", Cols: 4},
			fields: []string{"rows"},
		},
		{
			name:   "evaluation with unknown type",
			record: model.Evaluation{Name: "DS1", TargetID: "c1", Period: "T1", Subject: "Maths", Type: "oral"},
			fields: []string{"type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Struct(tt.record)
			if len(tt.fields) == 0 {
				assert.Nil(t, fields)
				return
			}
			assert.Len(t, fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestStructMessage(t *testing.T) {
	fields := Struct(model.Class{})
	assert.Equal(t, "name is required", fields["name"])
}
