package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dd0wney/capsl/pkg/logging"
)

// DefaultTranslatorArgs ask Spot's ltl2tgba for a deterministic monitor in
// HOA format, with the strongest simplifications.
var DefaultTranslatorArgs = []string{"-M", "-D", "-H", "--high"}

// waitDelay bounds how long a cancelled translator may hold its pipes open.
const waitDelay = 2 * time.Second

// Translator compiles a temporal rule into HOA text.
type Translator interface {
	Translate(ctx context.Context, rule string) (string, error)
}

// ExecTranslator runs an external translator once per rule. The rule is
// passed after -f.
type ExecTranslator struct {
	Path    string
	Args    []string
	Timeout time.Duration
	Logger  logging.Logger
}

// Translate implements Translator.
func (t *ExecTranslator) Translate(ctx context.Context, rule string) (string, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, t.Args...), "-f", rule)
	cmd := exec.CommandContext(ctx, t.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	timer := logging.StartTimer(logging.OrNop(t.Logger), "translate")
	if err := cmd.Run(); err != nil {
		timer.EndError(err)
		msg := strings.TrimSpace(stderr.String())
		if ctx.Err() != nil {
			msg = ctx.Err().Error()
		}
		return "", &ParseError{Source: t.Path, Text: rule, Cause: fmt.Errorf("%w: %v: %s", ErrTranslatorFailed, err, msg)}
	}
	timer.End(logging.Int("bytes", stdout.Len()))

	return stdout.String(), nil
}

// StaticTranslator serves pre-computed translations, keyed by rule text.
type StaticTranslator map[string]string

// Translate implements Translator.
func (t StaticTranslator) Translate(_ context.Context, rule string) (string, error) {
	hoa, ok := t[rule]
	if !ok {
		return "", &ParseError{Source: "static", Text: rule, Cause: fmt.Errorf("%w: no translation for rule", ErrTranslatorFailed)}
	}
	return hoa, nil
}

// LoadTranslations reads pre-computed HOA files, keyed by rule text.
func LoadTranslations(files map[string]string) (StaticTranslator, error) {
	t := make(StaticTranslator, len(files))
	for rule, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load translation for %q: %w", rule, err)
		}
		t[rule] = string(data)
	}
	return t, nil
}

// ChainTranslator asks each translator in turn and returns the first
// successful translation.
type ChainTranslator []Translator

// Translate implements Translator.
func (c ChainTranslator) Translate(ctx context.Context, rule string) (string, error) {
	var errs []error
	for _, t := range c {
		hoa, err := t.Translate(ctx, rule)
		if err == nil {
			return hoa, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return "", &ParseError{Source: "chain", Text: rule, Cause: fmt.Errorf("%w: no translators", ErrTranslatorFailed)}
	}
	return "", errors.Join(errs...)
}
