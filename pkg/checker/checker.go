// Package checker assembles a runtime checker from a project: components
// are read and composed, rules are translated, resolved against the
// composed alphabet and given reset transitions.
package checker

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dd0wney/capsl/pkg/automaton"
	"github.com/dd0wney/capsl/pkg/config"
	"github.com/dd0wney/capsl/pkg/ingest"
	"github.com/dd0wney/capsl/pkg/logging"
	"github.com/dd0wney/capsl/pkg/metrics"
	"github.com/dd0wney/capsl/pkg/parallel"
)

// Pipeline stages used as metric labels
const (
	StageRead      = "read"
	StageTranslate = "translate"
	StageParse     = "parse"
	StageBuild     = "build"
	StageCompose   = "compose"
	StagePass      = "pass"
)

// Result is a finished checker.
type Result struct {
	Name       string
	Components *automaton.Set
	Rules      *automaton.Set
	Reference  []automaton.Signal

	ruleCount int
}

// Builder runs the pipeline. A nil Logger or Metrics disables that
// concern; Translator is required when the project has rules. Up to
// Workers rules are translated concurrently.
type Builder struct {
	Logger     logging.Logger
	Metrics    *metrics.Registry
	Translator ingest.Translator
	Workers    int
}

// NewTranslator returns the translator a project asks for: its
// pre-computed translations first, then the external tool.
func NewTranslator(cfg *config.Config, logger logging.Logger) (ingest.Translator, error) {
	exec := &ingest.ExecTranslator{
		Path:    cfg.Translator.Path,
		Args:    cfg.Translator.Args,
		Timeout: cfg.Translator.Timeout,
		Logger:  logger,
	}
	if len(cfg.Translator.Translations) == 0 {
		return exec, nil
	}

	static, err := ingest.LoadTranslations(cfg.Translator.Translations)
	if err != nil {
		return nil, err
	}
	return ingest.ChainTranslator{static, exec}, nil
}

// Build reads every component and rule of the project.
func (b *Builder) Build(ctx context.Context, cfg *config.Config) (*Result, error) {
	logger := logging.OrNop(b.Logger).With(logging.Component(cfg.Name))
	timer := logging.StartTimer(logger, "checker build")

	opts := []automaton.Option{automaton.WithLogger(logger), automaton.WithMetrics(b.Metrics)}
	res := &Result{
		Name:       cfg.Name,
		Components: automaton.NewSet(opts...),
		Rules:      automaton.NewSet(opts...),
	}

	for _, path := range cfg.Components {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.addComponent(res, path, logger); err != nil {
			timer.EndError(err)
			return nil, err
		}
	}

	if members := res.Components.Members(); len(members) > 0 {
		res.Reference = members[0].Signals
	}

	for _, path := range cfg.Rules {
		if err := b.addRules(ctx, res, path, cfg.ComposeRules, logger); err != nil {
			timer.EndError(err)
			return nil, err
		}
	}

	timer.End(
		logging.Int("components", res.Components.Len()),
		logging.Int("rules", res.Rules.Len()),
	)
	return res, nil
}

func (b *Builder) addComponent(res *Result, path string, logger logging.Logger) error {
	def, err := ingest.ReadIAFile(path)
	if err != nil {
		b.Metrics.RecordIngestError(StageRead)
		return fmt.Errorf("read component %s: %w", path, err)
	}

	a, err := ingest.Build(def, logger)
	if err != nil {
		b.Metrics.RecordIngestError(StageBuild)
		return fmt.Errorf("build component %s: %w", path, err)
	}
	b.Metrics.RecordAutomatonBuilt(string(ingest.KindComponent))

	composed, err := res.Components.AddAndCompose(a)
	if err != nil {
		b.Metrics.RecordIngestError(StageCompose)
		return fmt.Errorf("compose component %s: %w", a.Name, err)
	}
	if composed {
		b.Metrics.RecordAutomatonBuilt("composed")
	}

	logger.Info("component added",
		logging.Automaton(a.Name),
		logging.Path(path),
		logging.Bool("composed", composed),
	)
	return nil
}

func (b *Builder) addRules(ctx context.Context, res *Result, path string, compose bool, logger logging.Logger) error {
	rules, err := ingest.ReadRulesFile(path)
	if err != nil {
		b.Metrics.RecordIngestError(StageRead)
		return fmt.Errorf("read rules %s: %w", path, err)
	}
	if len(rules) > 0 && b.Translator == nil {
		return fmt.Errorf("rules %s: no translator configured", path)
	}

	translations, err := parallel.Map(ctx, b.Workers, rules, b.translate, logger)
	if err != nil {
		return err
	}

	for i, rule := range rules {
		name := fmt.Sprintf("rule%d", res.ruleCount)
		res.ruleCount++
		a, err := b.buildRule(name, rule, translations[i], res.Reference, logger)
		if err != nil {
			return err
		}

		if !compose {
			res.Rules.Add(a)
			continue
		}
		if _, err := res.Rules.AddAndCompose(a); err != nil {
			b.Metrics.RecordIngestError(StageCompose)
			return fmt.Errorf("compose rule %q: %w", rule, err)
		}
	}
	return nil
}

func (b *Builder) translate(ctx context.Context, rule string) (string, error) {
	start := time.Now()
	hoa, err := b.Translator.Translate(ctx, rule)
	b.Metrics.RecordTranslation(time.Since(start))
	if err != nil {
		b.Metrics.RecordIngestError(StageTranslate)
		return "", fmt.Errorf("translate rule %q: %w", rule, err)
	}
	return hoa, nil
}

func (b *Builder) buildRule(name, rule, hoa string, reference []automaton.Signal, logger logging.Logger) (*automaton.Automaton, error) {
	logger = logger.With(logging.Automaton(name), logging.String("rule", rule))

	def, err := ingest.ParseHOA(strings.NewReader(hoa), name)
	if err != nil {
		b.Metrics.RecordIngestError(StageParse)
		return nil, fmt.Errorf("parse rule %q: %w", rule, err)
	}

	a, err := ingest.Build(def, logger)
	if err != nil {
		b.Metrics.RecordIngestError(StageBuild)
		return nil, fmt.Errorf("build rule %q: %w", rule, err)
	}

	a.ResolveSignals(reference, automaton.WithLogger(logger))
	if unresolved := a.UnresolvedSignals(); len(unresolved) > 0 {
		logger.Warn("rule refers to signals outside the components",
			logging.Strings("signals", unresolved),
		)
	}

	if err := a.Apply(automaton.ResetPass(logger)); err != nil {
		b.Metrics.RecordIngestError(StagePass)
		return nil, fmt.Errorf("reset pass on rule %q: %w", rule, err)
	}

	b.Metrics.RecordAutomatonBuilt(string(ingest.KindRule))
	logger.Info("rule added",
		logging.Int("states", len(a.States)),
		logging.Int("illegal", a.NumIllegal),
	)
	return a, nil
}

// Automata returns the components followed by the rules.
func (r *Result) Automata() []*automaton.Automaton {
	return append(r.Components.Members(), r.Rules.Members()...)
}

// WriteTables prints every automaton's transition table.
func (r *Result) WriteTables(w io.Writer) error {
	for _, a := range r.Automata() {
		if err := a.WriteTable(w); err != nil {
			return err
		}
	}
	return nil
}
