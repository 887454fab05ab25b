package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout bounds every outbound request (author link checks, Pages API).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// DataConfig locates the input data files that persist across runs.
type DataConfig struct {
	// QuotesFile is the newline-delimited quote pool.
	QuotesFile string `json:"quotes_file" yaml:"quotes_file" mapstructure:"quotes_file"`

	// VocabFile is the vocabulary store (word -> {definition}).
	VocabFile string `json:"vocab_file" yaml:"vocab_file" mapstructure:"vocab_file"`

	// PoemsFile is the poem bank (array of {title, author, lines}).
	PoemsFile string `json:"poems_file" yaml:"poems_file" mapstructure:"poems_file"`

	// LedgerFile is the used-quotes ledger.
	LedgerFile string `json:"ledger_file" yaml:"ledger_file" mapstructure:"ledger_file"`

	// StateDir holds the run lock and the history database. When it lies
	// inside the repository it is added to .git/info/exclude before any
	// clean or stash.
	StateDir string `json:"state_dir" yaml:"state_dir" mapstructure:"state_dir"`
}

// OutputFormat selects the rendering of published documents.
type OutputFormat string

const (
	FormatHTML     OutputFormat = "html"
	FormatMarkdown OutputFormat = "markdown"
)

// Ext returns the file extension (without dot) for the format.
func (f OutputFormat) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return "html"
}

// SiteConfig describes the layout of the published site inside the repository.
type SiteConfig struct {
	// Format selects html or markdown documents.
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`

	// PostsDir holds the daily post pages listed on the index (relative to the repo).
	PostsDir string `json:"posts_dir" yaml:"posts_dir" mapstructure:"posts_dir"`

	// PoemsDir and MediaDir receive archive imports. Imported quotes go to
	// PostsDir with a historical marker.
	PoemsDir string `json:"poems_dir" yaml:"poems_dir" mapstructure:"poems_dir"`
	MediaDir string `json:"media_dir" yaml:"media_dir" mapstructure:"media_dir"`

	// AudioDir receives poem recitations.
	AudioDir string `json:"audio_dir" yaml:"audio_dir" mapstructure:"audio_dir"`

	// PostTemplate and IndexTemplate are template documents with placeholder
	// tokens. PostTemplate is only read for html output.
	PostTemplate  string `json:"post_template" yaml:"post_template" mapstructure:"post_template"`
	IndexTemplate string `json:"index_template" yaml:"index_template" mapstructure:"index_template"`

	// IndexFile is the generated index page name (default index.<ext>).
	IndexFile string `json:"index_file" yaml:"index_file" mapstructure:"index_file"`

	// ChannelURL links imported documents back to their source message
	// (e.g. "https://t.me/c/123456"). Empty disables the link.
	ChannelURL string `json:"channel_url" yaml:"channel_url" mapstructure:"channel_url"`
}

// GitConfig configures the repository synchronizer.
type GitConfig struct {
	// RepoDir is the local working tree published to the remote.
	RepoDir string `json:"repo_dir" yaml:"repo_dir" mapstructure:"repo_dir"`

	Remote string `json:"remote" yaml:"remote" mapstructure:"remote"`
	Branch string `json:"branch" yaml:"branch" mapstructure:"branch"`

	// Binary is the git executable (default "git").
	Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`

	// Timeout bounds each git operation.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// AuthorName and AuthorEmail override the commit identity when set.
	AuthorName  string `json:"author_name" yaml:"author_name" mapstructure:"author_name"`
	AuthorEmail string `json:"author_email" yaml:"author_email" mapstructure:"author_email"`

	// Disabled skips all synchronization (local-only publishing).
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// TelegramConfig configures the messaging channel.
type TelegramConfig struct {
	Token     string        `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
	ChannelID int64         `json:"channel_id" yaml:"channel_id" mapstructure:"channel_id"`
	Proxy     string        `json:"proxy,omitempty" yaml:"proxy,omitempty" mapstructure:"proxy"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Post enables posting the daily content to the channel.
	Post bool `json:"post" yaml:"post" mapstructure:"post"`
}

// SpeechBackend selects how poem recitations are produced.
type SpeechBackend string

const (
	SpeechNone      SpeechBackend = "none"
	SpeechCommand   SpeechBackend = "command"
	SpeechContainer SpeechBackend = "container"
)

// SpeechConfig configures the text-to-speech collaborator.
type SpeechConfig struct {
	Backend SpeechBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Command and Args run a local TTS tool. Args may contain {text_file}, {out} and {lang}.
	Command string   `json:"command" yaml:"command" mapstructure:"command"`
	Args    []string `json:"args" yaml:"args" mapstructure:"args"`

	// Image is the container image used by the container backend. It reads
	// text on stdin and writes audio on stdout.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	Lang    string        `json:"lang" yaml:"lang" mapstructure:"lang"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// PagesConfig configures the optional GitHub Pages rebuild trigger.
type PagesConfig struct {
	// Repo is "owner/name". Empty disables the trigger.
	Repo    string `json:"repo" yaml:"repo" mapstructure:"repo"`
	Token   string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
	APIBase string `json:"api_base" yaml:"api_base" mapstructure:"api_base"`
}

// ScheduleConfig configures `quotesite serve`.
type ScheduleConfig struct {
	// Cron is a six-field cron expression (seconds first).
	Cron string `json:"cron" yaml:"cron" mapstructure:"cron"`
}

// Config groups the settings of every component. It is built once by the
// CLI and passed explicitly; no component reads the environment.
type Config struct {
	LogMode  string         `json:"log_mode" yaml:"log_mode" mapstructure:"log_mode"`
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Data     DataConfig     `json:"data" yaml:"data" mapstructure:"data"`
	Site     SiteConfig     `json:"site" yaml:"site" mapstructure:"site"`
	Git      GitConfig      `json:"git" yaml:"git" mapstructure:"git"`
	Telegram TelegramConfig `json:"telegram" yaml:"telegram" mapstructure:"telegram"`
	Speech   SpeechConfig   `json:"speech" yaml:"speech" mapstructure:"speech"`
	Pages    PagesConfig    `json:"pages" yaml:"pages" mapstructure:"pages"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
}

// Defaults.
const (
	DefaultHTTPTimeout   = 10 * time.Second
	DefaultUserAgent     = "quotesite/0.1"
	DefaultGitTimeout    = 2 * time.Minute
	DefaultSpeechTimeout = 2 * time.Minute
	DefaultSchedule      = "0 0 8 * * *"
	DefaultPagesAPIBase  = "https://api.github.com"
)

// WithDefaults returns a copy of c with every empty field set to its default.
// Relative data and site paths are resolved against the repository directory.
func (c Config) WithDefaults() Config {
	if c.LogMode == "" {
		c.LogMode = "development"
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = DefaultUserAgent
	}
	if c.HTTP.MaxRetries <= 0 {
		c.HTTP.MaxRetries = 2
	}

	if c.Git.RepoDir == "" {
		c.Git.RepoDir = "."
	}
	if c.Git.Remote == "" {
		c.Git.Remote = "origin"
	}
	if c.Git.Branch == "" {
		c.Git.Branch = "main"
	}
	if c.Git.Binary == "" {
		c.Git.Binary = "git"
	}
	if c.Git.Timeout <= 0 {
		c.Git.Timeout = DefaultGitTimeout
	}

	if c.Site.Format == "" {
		c.Site.Format = FormatHTML
	}
	setDefault(&c.Site.PostsDir, "posts")
	setDefault(&c.Site.PoemsDir, "poems")
	setDefault(&c.Site.MediaDir, "media")
	setDefault(&c.Site.AudioDir, "audio")
	setDefault(&c.Site.PostTemplate, "post_template.html")
	setDefault(&c.Site.IndexTemplate, "index_template."+c.Site.Format.Ext())
	setDefault(&c.Site.IndexFile, "index."+c.Site.Format.Ext())

	setDefault(&c.Data.QuotesFile, "quotes.txt")
	setDefault(&c.Data.VocabFile, "vocab_bank.json")
	setDefault(&c.Data.PoemsFile, "poem_bank.json")
	setDefault(&c.Data.LedgerFile, "used_quotes.json")
	setDefault(&c.Data.StateDir, ".quotesite")

	if c.Telegram.Timeout <= 0 {
		c.Telegram.Timeout = 30 * time.Second
	}

	if c.Speech.Backend == "" {
		c.Speech.Backend = SpeechNone
	}
	if c.Speech.Lang == "" {
		c.Speech.Lang = "en"
	}
	if c.Speech.Timeout <= 0 {
		c.Speech.Timeout = DefaultSpeechTimeout
	}

	if c.Pages.APIBase == "" {
		c.Pages.APIBase = DefaultPagesAPIBase
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = DefaultSchedule
	}
	return c
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate reports configuration errors that would make a run fail late.
func (c Config) Validate() error {
	var errs []error
	switch c.Site.Format {
	case FormatHTML, FormatMarkdown:
	default:
		errs = append(errs, fmt.Errorf("site.format %q: use html or markdown", c.Site.Format))
	}
	switch c.Speech.Backend {
	case SpeechNone:
	case SpeechCommand:
		if c.Speech.Command == "" {
			errs = append(errs, errors.New("speech.command is required for the command backend"))
		}
	case SpeechContainer:
		if c.Speech.Image == "" {
			errs = append(errs, errors.New("speech.image is required for the container backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("speech.backend %q: use none, command, or container", c.Speech.Backend))
	}
	if c.Telegram.Post && (c.Telegram.Token == "" || c.Telegram.ChannelID == 0) {
		errs = append(errs, errors.New("telegram.post requires telegram.token and telegram.channel_id"))
	}
	return errors.Join(errs...)
}

// RepoPath resolves p against the repository directory unless it is absolute.
func (c Config) RepoPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Git.RepoDir, p)
}
