package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		names []string
		want  []string
	}{
		{
			name:  "short flag with separate value",
			args:  []string{"-c", "conf.json", "-a", "http://localhost"},
			names: []string{"c", "config"},
			want:  []string{"-c", "conf.json"},
		},
		{
			name:  "double dash with equals",
			args:  []string{"--config=alt.json", "-a", "http://localhost"},
			names: []string{"c", "config"},
			want:  []string{"--config=alt.json"},
		},
		{
			name:  "names may be given with dashes",
			args:  []string{"-s", "store.db"},
			names: []string{"-s"},
			want:  []string{"-s", "store.db"},
		},
		{
			name:  "unknown flags and positionals ignored",
			args:  []string{"-x", "1", "--y=2", "positional"},
			names: []string{"c"},
			want:  []string{},
		},
		{
			name:  "flag without value at end is kept",
			args:  []string{"-c"},
			names: []string{"c"},
			want:  []string{"-c"},
		},
		{
			name:  "next dash token is not a value",
			args:  []string{"-c", "-a", "x"},
			names: []string{"c", "a"},
			want:  []string{"-c", "-a", "x"},
		},
		{
			name:  "terminator stops filtering",
			args:  []string{"-a", "x", "--", "-c", "y"},
			names: []string{"a", "c"},
			want:  []string{"-a", "x"},
		},
		{
			name:  "repeated flag preserved in order",
			args:  []string{"-c", "one.json", "-c", "two.json"},
			names: []string{"c"},
			want:  []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:  "empty args",
			args:  []string{},
			names: []string{"c"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.names...))
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Run("short -c with value", func(t *testing.T) {
		assert.Equal(t, "/path/short.json", ConfigPath([]string{"-c", "/path/short.json"}))
	})

	t.Run("long -config with value", func(t *testing.T) {
		assert.Equal(t, "/path/long.json", ConfigPath([]string{"--config=/path/long.json"}))
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		assert.Empty(t, ConfigPath([]string{"-x", "1", "-y", "2"}))
	})

	t.Run("last wins", func(t *testing.T) {
		assert.Equal(t, "/path/2.json", ConfigPath([]string{"-c", "/path/1.json", "-config", "/path/2.json"}))
	})
}
