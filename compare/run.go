package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cssdiff/config"
	"cssdiff/state"
)

// Flags returns options of "diff" command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, DefaultText: "from configuration",
			Usage: "report `TYPE` (supported types: " + strings.Join(config.ReportFormatNames(), ", ") + ")"},
		&cli.StringFlag{Name: "fallback-cp", DefaultText: "from configuration",
			Usage: "decode stylesheets which are not valid UTF-8 using `ENCODING` (see IANA.org for character set names)"},
	}
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compare")

	if cmd.Args().Len() < 2 {
		return errors.New("both LONG and SHORT stylesheets must be specified")
	}
	longSrc, shortSrc := cmd.Args().Get(0), cmd.Args().Get(1)
	if longSrc, err = filepath.Abs(longSrc); err != nil {
		return err
	}
	if shortSrc, err = filepath.Abs(shortSrc); err != nil {
		return err
	}

	dst := cmd.Args().Get(2)
	if len(dst) > 0 && dst != "-" {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 3 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[3:]))
	}

	env.Format = env.Cfg.Compare.Report.Format
	if f := cmd.String("format"); len(f) > 0 {
		if env.Format, err = config.ParseReportFormat(f); err != nil {
			return fmt.Errorf("unknown report format requested: %w", err)
		}
	}

	cp := env.Cfg.Compare.FallbackEncoding
	if f := cmd.String("fallback-cp"); len(f) > 0 {
		cp = f
	}
	if env.CodePage, err = ResolveEncoding(cp); err != nil {
		return err
	}
	log.Debug("Stylesheets which are not valid UTF-8 will be decoded", zap.String("charset", EncodingName(env.CodePage)))

	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		name, err := ReportFileName(env.Cfg.Compare.Report.NameTemplate, longSrc, shortSrc, env.Format)
		if err != nil {
			return err
		}
		dst = filepath.Join(dst, name)
	}

	log.Info("Processing starting", zap.String("long", longSrc), zap.String("short", shortSrc), zap.String("destination", destinationName(dst)), zap.Stringer("format", env.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, env, longSrc, shortSrc, dst, log)
}

// process handles comparison independently of CLI framework.
func process(ctx context.Context, env *state.LocalEnv, longSrc, shortSrc, dst string, log *zap.Logger) error {
	loader := NewLoader(env.CodePage, log)
	res, in, err := Compare(ctx, loader, longSrc, shortSrc)
	if err != nil {
		return err
	}
	if env.Rpt != nil {
		storeInput(env.Rpt, "input/long.css", in.Long)
		storeInput(env.Rpt, "input/short.css", in.Short)
		env.Rpt.StoreData("parsed/long.txt", []byte(loader.Dump(in.Long)))
		env.Rpt.StoreData("parsed/short.txt", []byte(loader.Dump(in.Short)))
	}

	var buf bytes.Buffer
	if err := Render(&buf, res, env.Format, env.Cfg.Compare.Report.SeparatorWidth); err != nil {
		return err
	}
	env.Rpt.StoreData("report."+env.Format.String(), buf.Bytes())

	if err := writeReport(dst, buf.Bytes()); err != nil {
		return err
	}
	log.Info("Report written", zap.String("destination", destinationName(dst)), zap.Int("missing", len(res.Missing)))
	return nil
}

// storeInput puts stylesheet into debug report. Files on disk are copied
// with their path recorded in MANIFEST, entries of archives are stored as
// read.
func storeInput(rpt *config.Report, name string, src *Source) {
	if fi, err := os.Stat(src.Path); err == nil && fi.Mode().IsRegular() {
		if err := rpt.StoreCopy(name, src.Path); err == nil {
			return
		}
	}
	rpt.StoreData(name, src.Data)
}

func writeReport(dst string, data []byte) error {
	out := os.Stdout
	if len(dst) > 0 && dst != "-" {
		f, err := os.Create(dst)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", dst, err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}

func destinationName(dst string) string {
	if len(dst) == 0 || dst == "-" {
		return "STDOUT"
	}
	return dst
}
