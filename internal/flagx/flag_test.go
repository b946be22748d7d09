package flagx

import (
	"flag"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag (no value)",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "server flags mixed with client flags",
			args:         []string{"-a", ":3000", "-f", "local.db", "-d", "postgres://x", "-i", "5"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-a", ":3000", "-d", "postgres://x"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "repeated allowed flag is preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/path/short.json", ConfigPath([]string{"-c", "/path/short.json"}))
	assert.Equal(t, "/path/long.json", ConfigPath([]string{"-config", "/path/long.json", "-a", ":1"}))
	assert.Equal(t, "/path/2.json", ConfigPath([]string{"-c", "/path/1.json", "-config=/path/2.json"}))
	assert.Empty(t, ConfigPath([]string{"-x", "1"}))
}

func Test_jsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-c", "/path/short.json"}
	assert.Equal(t, "/path/short.json", JsonConfigFlags())

	os.Args = []string{"testbin"}
	assert.Empty(t, JsonConfigFlags())
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in      string
		unit    time.Duration
		want    time.Duration
		wantErr bool
	}{
		{in: "168", unit: time.Hour, want: 168 * time.Hour},
		{in: "90s", unit: time.Hour, want: 90 * time.Second},
		{in: "5", unit: time.Second, want: 5 * time.Second},
		{in: "abc", unit: time.Second, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d time.Duration
			v := NewDuration(&d, tt.unit)
			err := v.Set(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.want.String(), v.String())
		})
	}
}

func TestDuration_WithFlagSet(t *testing.T) {
	d := 3 * time.Second
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.Var(NewDuration(&d, time.Second), "i", "interval")

	require.NoError(t, fs.Parse([]string{"-i", "10"}))
	assert.Equal(t, 10*time.Second, d)
}
