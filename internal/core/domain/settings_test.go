package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() Settings {
	s := DefaultSettings()
	s.Board.ID = "1234"
	s.Board.DateColumn = "date_open"
	return s
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, DefaultAPIURL, s.API.URL)
	assert.Equal(t, DefaultTokenEnv, s.API.TokenEnv)
	assert.Equal(t, DefaultConcurrency, s.Run.Concurrency)
	assert.Equal(t, CacheIndexSQLite, s.Cache.Index)
	assert.Equal(t, DefaultPageWidth, s.Render.PageWidth)
	assert.Equal(t, DefaultPageHeight, s.Render.PageHeight)
	assert.Equal(t, DefaultUnsupportedTemplate, s.Placeholders.Unsupported)
	assert.Equal(t, 60*time.Second, s.Run.FetchTimeout())
	assert.Equal(t, 30*time.Second, s.API.Timeout())
	assert.Equal(t, 60*time.Second, s.Render.ToolTimeout())
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	s := Settings{Run: RunSettings{Concurrency: 9}, Cache: CacheSettings{Index: "REDIS"}}
	s.ApplyDefaults()

	assert.Equal(t, 9, s.Run.Concurrency)
	assert.Equal(t, CacheIndexRedis, s.Cache.Index)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"valid", func(*Settings) {}, ""},
		{"missing board", func(s *Settings) { s.Board.ID = " " }, "board.id"},
		{"missing date column", func(s *Settings) { s.Board.DateColumn = "" }, "board.date_column"},
		{"bad index", func(s *Settings) { s.Cache.Index = "etcd" }, "cache.index"},
		{"redis without url", func(s *Settings) { s.Cache.Index = CacheIndexRedis }, "cache.redis_url"},
		{"landscape page", func(s *Settings) { s.Render.PageWidth = 3000 }, "render.page_width"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validSettings()
			tc.mutate(&s)
			err := s.Validate()
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFatalConfig)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestPlaceholderSettings_Template(t *testing.T) {
	p := DefaultSettings().Placeholders
	assert.Equal(t, DefaultUnsupportedTemplate, p.Template(PlaceholderUnsupported))
	assert.Equal(t, DefaultCorruptTemplate, p.Template(PlaceholderCorrupt))
	assert.Equal(t, DefaultUnavailableTemplate, p.Template(PlaceholderUnavailable))
	assert.Empty(t, p.Template(PlaceholderNone))
}
