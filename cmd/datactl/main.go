package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/stemsi/classbook-backend/internal/config"
	"github.com/stemsi/classbook-backend/internal/logger"
	"github.com/stemsi/classbook-backend/internal/persistence"
	"github.com/stemsi/classbook-backend/internal/service"
	"github.com/stemsi/classbook-backend/internal/store"
)

func main() {
	var (
		output string
		period string
		yes    bool
	)
	flag.StringVar(&output, "o", "", "Output file (default: stdout)")
	flag.StringVar(&period, "period", "", "Period for grades-xlsx")
	flag.BoolVar(&yes, "yes", false, "Replace data without asking")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "datactl")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// ─── Open Storage ──────────────────────────────────────────────────
	backend, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer backend.Close()

	state, _, err := persistence.LoadOrDefault(ctx, backend.Port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load workbook")
	}
	st := store.New(state)

	switch args[0] {
	case "export":
		b, err := service.NewTransferService(st, log).Export()
		if err != nil {
			log.Fatal().Err(err).Msg("Export failed")
		}
		writeOutput(log, output, b)

	case "import":
		raw := readInput(log, args)
		if !confirm(yes, "Replace the stored collections with "+args[1]+"?") {
			fmt.Println("Aborted")
			return
		}
		keys, err := service.NewTransferService(st, log).Import(raw)
		if err != nil {
			log.Fatal().Err(err).Msg("Import failed")
		}
		save(ctx, log, backend.Port, st)
		fmt.Printf("Replaced: %s\n", strings.Join(keys, ", "))

	case "import-lessons":
		raw := readInput(log, args)
		if !confirm(yes, "Replace every dated lesson with "+args[1]+"?") {
			fmt.Println("Aborted")
			return
		}
		n, err := service.NewTimetableService(st, nil, cfg.Location, log).ImportLessons(raw)
		if err != nil {
			log.Fatal().Err(err).Msg("Lesson import failed")
		}
		save(ctx, log, backend.Port, st)
		fmt.Printf("Imported %d lessons\n", n)

	case "grades-xlsx":
		if output == "" {
			log.Fatal().Msg("grades-xlsx requires -o")
		}
		b, err := service.NewGradeService(st, log).ExportWorkbook(period)
		if err != nil {
			log.Fatal().Err(err).Msg("Workbook export failed")
		}
		writeOutput(log, output, b)

	default:
		printUsage()
		os.Exit(2)
	}
}

func readInput(log zerolog.Logger, args []string) []byte {
	if len(args) < 2 {
		log.Fatal().Msgf("%s requires a file argument", args[0])
	}
	b, err := os.ReadFile(args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}
	return b
}

func writeOutput(log zerolog.Logger, path string, b []byte) {
	if path == "" {
		_, _ = os.Stdout.Write(b)
		return
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", path, len(b))
}

func save(ctx context.Context, log zerolog.Logger, port persistence.Port, st *store.Store) {
	if err := port.Save(ctx, st.Snapshot()); err != nil {
		log.Fatal().Err(err).Msg("Failed to save workbook")
	}
}

// confirm asks on an interactive terminal. Without one, -yes is required.
func confirm(yes bool, question string) bool {
	if yes {
		return true
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		fmt.Fprintln(os.Stderr, "Refusing to replace data without a terminal; pass -yes")
		return false
	}
	fmt.Printf("%s [y/N]: ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes" || answer == "o" || answer == "oui"
}

func printUsage() {
	fmt.Println("Usage: datactl [flags] <command>")
	fmt.Println("Commands:")
	fmt.Println("  export                 Write the workbook JSON backup")
	fmt.Println("  import <file>          Replace collections from a JSON backup")
	fmt.Println("  import-lessons <file>  Replace dated lessons from a JSON array")
	fmt.Println("  grades-xlsx            Write the grade workbook of -period to -o")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
