// Command mekiki reconciles a captured web page against its print
// document and gates on the audit outcome: exit 0 when every check
// passes, exit 1 on any critical finding.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	mekiki "github.com/isuzumi2025-cell/MEKIKI-sub002"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/input"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/ocr"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/profile"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/render"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		flagWeb        string
		flagDoc        string
		flagProfile    string
		flagWebRenders string
		flagDocRenders string
		flagBaseline   int
		flagDPI        float64
		flagLang       string
		flagJSON       bool
		flagVerbose    bool
	)
	flag.StringVar(&flagWeb, "web", "", "web capture payload (JSON or hOCR), or a directory of page images to recognize")
	flag.StringVar(&flagDoc, "doc", "", "document payload (JSON or hOCR), or a directory of page images to recognize")
	flag.StringVar(&flagProfile, "profile", "", "calibration: strict, relaxed, or a YAML profile file (default relaxed)")
	flag.StringVar(&flagWebRenders, "web-renders", "", "directory of rendered web previews for coordinate verification")
	flag.StringVar(&flagDocRenders, "doc-renders", "", "directory of rendered document previews for coordinate verification")
	flag.IntVar(&flagBaseline, "baseline", -1, "minimum acceptable match count, overriding the profile")
	flag.Float64Var(&flagDPI, "dpi", 300, "native resolution assumed for recognized page images")
	flag.StringVar(&flagLang, "lang", "", "recognition language for page-image inputs")
	flag.BoolVar(&flagJSON, "json", false, "write the full result as JSON to stdout instead of the report")
	flag.BoolVar(&flagVerbose, "v", false, "verbose logging")
	flag.Parse()

	log := newLogger(flagVerbose)

	if flagWeb == "" || flagDoc == "" {
		fmt.Fprintln(os.Stderr, "usage: mekiki -web <payload> -doc <payload> [options]")
		flag.PrintDefaults()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prof, err := loadProfile(flagProfile)
	if err != nil {
		log.Error().Err(err).Msg("profile not usable")
		return 2
	}
	log.Info().
		Str("profile", prof.Name).
		Float64("match_threshold", prof.Match.MatchThreshold).
		Float64("min_score", prof.Match.MinScore).
		Msg("profile activated")

	web, warnings, err := loadSource(flagWeb, model.SourceWeb, flagDPI, flagLang)
	if err != nil {
		log.Error().Err(err).Str("path", flagWeb).Msg("web source not loadable")
		return 2
	}
	doc, docWarnings, err := loadSource(flagDoc, model.SourceDocument, flagDPI, flagLang)
	if err != nil {
		log.Error().Err(err).Str("path", flagDoc).Msg("document source not loadable")
		return 2
	}
	warnings = append(warnings, docWarnings...)

	r := mekiki.NewRun(web, doc).Profile(prof).Logger(log)

	if flagWebRenders != "" {
		probes, err := render.ProbeDir(flagWebRenders)
		if err != nil {
			log.Error().Err(err).Str("dir", flagWebRenders).Msg("web previews not probeable")
			return 2
		}
		r = r.WebRenders(mekiki.RenderedPages(probes)...)
	}
	if flagDocRenders != "" {
		probes, err := render.ProbeDir(flagDocRenders)
		if err != nil {
			log.Error().Err(err).Str("dir", flagDocRenders).Msg("document previews not probeable")
			return 2
		}
		r = r.DocumentRenders(mekiki.RenderedPages(probes)...)
	}
	if flagBaseline >= 0 {
		r = r.MatchBaseline(flagBaseline)
	}

	result, runWarnings, err := r.Reconcile(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reconciliation aborted")
		return 1
	}
	warnings = append(warnings, runWarnings...)

	if len(warnings) > 0 {
		fmt.Fprintln(os.Stderr, mekiki.FormatWarnings(warnings))
	}

	report := result.Report
	if flagJSON {
		// A critical finding invalidates the result, so there is no
		// artifact to hand downstream
		if report.ExitCode() != 0 {
			fmt.Fprint(os.Stderr, report.String())
			log.Error().Int("critical", report.CriticalCount()).Msg("result withheld")
			return report.ExitCode()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Error().Err(err).Msg("result not encodable")
			return 1
		}
	} else {
		fmt.Print(report.String())
	}

	if !report.Promotable() {
		log.Warn().Int("major", report.MajorCount()).Msg("run is not promotable")
	}

	return report.ExitCode()
}

// loadProfile resolves a profile flag: a built-in name, an empty string
// for the relaxed default, or a YAML file path.
func loadProfile(name string) (profile.Profile, error) {
	switch name {
	case "", "strict", "relaxed":
		return profile.ByName(name)
	}
	return profile.Load(name)
}

// loadSource reads one side of the comparison. A directory is treated
// as ordered page images and recognized; a file is decoded as a JSON or
// hOCR payload.
func loadSource(path string, kind model.SourceKind, dpi float64, lang string) (model.PageSet, []mekiki.Warning, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.PageSet{}, nil, err
	}
	if info.IsDir() {
		set, err := recognizeDir(path, kind, dpi, lang)
		return set, nil, err
	}
	return input.LoadFile(path, kind)
}

// recognizeDir runs OCR over every page image in the directory, in
// name order.
func recognizeDir(dir string, kind model.SourceKind, dpi float64, lang string) (model.PageSet, error) {
	paths, err := render.ListPreviews(dir)
	if err != nil {
		return model.PageSet{}, err
	}
	if len(paths) == 0 {
		return model.PageSet{}, fmt.Errorf("no page images in %s", dir)
	}

	images := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return model.PageSet{}, err
		}
		images = append(images, data)
	}

	client, err := ocr.New()
	if err != nil {
		return model.PageSet{}, err
	}
	defer client.Close()

	if lang != "" {
		if err := client.SetLanguage(lang); err != nil {
			return model.PageSet{}, err
		}
	}

	return client.RecognizePages(images, kind, dpi)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
