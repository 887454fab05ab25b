package main

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quotesite/internal/secrets"
	"github.com/pdiddy/quotesite/pkg/types"
)

func TestLoadConfigAppliesSecretsAndDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("git.repo_dir", "/srv/site")
	viper.Set("site.format", "markdown")
	viper.Set("git.timeout", "45s")
	viper.Set("telegram.channel_id", -1001234)
	viper.Set("speech.args", []string{"-w", "{out}", "-f", "{text_file}"})

	c, err := loadConfig(map[string]string{
		secrets.KeyTelegramBotToken: "bot-secret",
		secrets.KeyGitHubToken:      "gh-secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "/srv/site", c.Git.RepoDir)
	assert.Equal(t, types.FormatMarkdown, c.Site.Format)
	assert.Equal(t, 45*time.Second, c.Git.Timeout)
	assert.Equal(t, int64(-1001234), c.Telegram.ChannelID)
	assert.Equal(t, []string{"-w", "{out}", "-f", "{text_file}"}, c.Speech.Args)
	assert.Equal(t, "bot-secret", c.Telegram.Token)
	assert.Equal(t, "gh-secret", c.Pages.Token)

	assert.Equal(t, "index.md", c.Site.IndexFile)
	assert.Equal(t, "index_template.md", c.Site.IndexTemplate)
	assert.Equal(t, "origin", c.Git.Remote)
	assert.Equal(t, types.DefaultSchedule, c.Schedule.Cron)
	assert.Equal(t, "/srv/site/.quotesite", c.RepoPath(c.Data.StateDir))
}

func TestLoadConfigKeepsExplicitTokens(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("telegram.token", "from-config")
	c, err := loadConfig(map[string]string{secrets.KeyTelegramBotToken: "from-file"})
	require.NoError(t, err)
	assert.Equal(t, "from-config", c.Telegram.Token)
}

func TestBindFlags(t *testing.T) {
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("repo", "", "")
	fs.String("format", "", "")
	fs.String("log-mode", "", "")
	fs.Bool("no-git", false, "")
	require.NoError(t, bindFlags(v, fs))

	require.NoError(t, fs.Parse([]string{"--repo", "/srv/site", "--no-git"}))
	assert.Equal(t, "/srv/site", v.GetString("git.repo_dir"))
	assert.True(t, v.GetBool("git.disabled"))

	missing := pflag.NewFlagSet("test", pflag.ContinueOnError)
	missing.String("repo", "", "")
	err := bindFlags(viper.New(), missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--no-git")
	assert.Contains(t, err.Error(), "--format")
	assert.NotContains(t, err.Error(), "--repo")
}

func TestBindFlagsMatchesRootFlags(t *testing.T) {
	assert.NoError(t, bindFlags(viper.New(), rootCmd.PersistentFlags()))
	assert.NoError(t, bindEnv(viper.New()))
}
