package service_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zemenay/techpulse-api/internal/service"
)

func TestContentFilter_Clean(t *testing.T) {
	t.Parallel()
	f := service.NewContentFilter([]string{"badword"})

	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{name: "保留HTML原文", content: "hello <b>world</b>", want: "hello <b>world</b>"},
		{name: "引号与符号不转义", content: `it's "fine" & x<y`, want: `it's "fine" & x<y`},
		{name: "首尾空白被去除", content: "  hi  ", want: "hi"},
		{name: "敏感词替换", content: "a badword here", want: "a ******* here"},
		{name: "空内容", content: " \t\n ", wantErr: service.ErrEmptyContent},
		{name: "超长内容", content: strings.Repeat("中", 2001), wantErr: service.ErrContentTooLong},
		{name: "恰好上限", content: strings.Repeat("中", 2000), want: strings.Repeat("中", 2000)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := f.Clean(tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSensitiveWords(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "words.txt")
	content := base64.StdEncoding.EncodeToString([]byte("spam")) + "\n\n" +
		"!!not-base64!!\n" +
		base64.StdEncoding.EncodeToString([]byte("  scam ")) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	words, err := service.LoadSensitiveWords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"spam", "scam"}, words)

	_, err = service.LoadSensitiveWords(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
