package compare

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"cssdiff/config"
	"cssdiff/diff"
)

// Inputs are both stylesheets of a single comparison.
type Inputs struct {
	Long  *Source
	Short *Source
}

// Compare loads long and short stylesheets, collects their rules and finds
// keys which are present in long one only. Registries are local to the call.
func Compare(ctx context.Context, l *Loader, longSrc, shortSrc string) (*diff.Result, *Inputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	l.log.Info("Parsing LONG CSS", zap.String("source", longSrc))
	long, longReg, err := l.Load(longSrc)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load LONG stylesheet: %w", err)
	}
	l.log.Info("Collected LONG CSS", zap.Int("keys", longReg.Len()), zap.Int("occurrences", longReg.Count()))

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	l.log.Info("Parsing SHORT CSS", zap.String("source", shortSrc))
	short, shortReg, err := l.Load(shortSrc)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load SHORT stylesheet: %w", err)
	}
	l.log.Info("Collected SHORT CSS", zap.Int("keys", shortReg.Len()), zap.Int("occurrences", shortReg.Count()))

	res := diff.Compare(longReg, shortReg)
	l.log.Info("Comparison completed", zap.Int("missing", len(res.Missing)), zap.String("summary", diff.Summary(res)))
	return res, &Inputs{Long: long, Short: short}, nil
}

// Render writes report in requested format.
func Render(w io.Writer, res *diff.Result, format config.ReportFormat, separatorWidth int) error {
	switch format {
	case config.ReportFormatText:
		return diff.WriteText(w, res, separatorWidth)
	case config.ReportFormatYaml:
		return diff.WriteYAML(w, res)
	}
	return fmt.Errorf("unsupported report format: %s", format)
}
