package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ppiankov/contextcraft/internal/model"
)

// rewriteFlags are shared by the rewrite and batch commands
type rewriteFlags struct {
	profile     string
	strength    string
	format      string
	concurrency int
	timeout     time.Duration
	llmProvider string
	llmModel    string
	noCache     bool
	insecureTLS bool
	debug       bool
}

func (f *rewriteFlags) register(fs *pflag.FlagSet, defaultTimeout time.Duration) {
	fs.StringVar(&f.profile, "profile", string(model.ProfileGeneral), "target audience (startup, enterprise, general)")
	fs.StringVar(&f.strength, "strength", string(model.StrengthModerate), "rewrite strength (conservative, moderate, aggressive)")
	fs.StringVar(&f.format, "format", "auto", "input format (auto, markdown, html)")
	fs.IntVar(&f.concurrency, "concurrency", 1, "max in-flight LLM calls")
	fs.DurationVar(&f.timeout, "timeout", defaultTimeout, "overall timeout")
	fs.StringVar(&f.llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama, gemini)")
	fs.StringVar(&f.llmModel, "llm-model", "", "LLM model name")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the generation cache")
	fs.BoolVar(&f.insecureTLS, "insecure", false, "skip TLS certificate verification when fetching URLs")
	fs.BoolVar(&f.debug, "debug", false, "include debug block in reports")
}

// apply overrides cfg with the flags the user set explicitly
func (f *rewriteFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	changed := cmd.Flags().Changed

	if changed("concurrency") {
		cfg.Rewrite.Concurrency = f.concurrency
	}
	if changed("llm-provider") {
		cfg.LLM.Provider = f.llmProvider
	}
	if changed("llm-model") {
		cfg.LLM.Model = f.llmModel
	}
	if changed("no-cache") {
		cfg.Cache.Enabled = !f.noCache
	}
	if changed("insecure") {
		cfg.HTTP.InsecureTLS = f.insecureTLS
	}
	if changed("debug") {
		cfg.Output.Debug = f.debug
	}
}
