package pagination_test

import (
	"testing"

	"github.com/JaimeStill/kahuna/pkg/pagination"
)

func TestConfig_Length(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 50, MaxPageSize: 200}

	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"zero uses default", 0, 50},
		{"negative uses default", -5, 50},
		{"within range unchanged", 75, 75},
		{"at max unchanged", 200, 200},
		{"over max capped", 500, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Length(tt.requested); got != tt.want {
				t.Errorf("Length(%d) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}

func TestConfig_Finalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     pagination.Config
		want    pagination.Config
		wantErr bool
	}{
		{
			name: "defaults applied",
			cfg:  pagination.Config{},
			want: pagination.Config{DefaultPageSize: 50, MaxPageSize: 200},
		},
		{
			name: "explicit values kept",
			cfg:  pagination.Config{DefaultPageSize: 10, MaxPageSize: 20},
			want: pagination.Config{DefaultPageSize: 10, MaxPageSize: 20},
		},
		{
			name:    "default exceeds max",
			cfg:     pagination.Config{DefaultPageSize: 30, MaxPageSize: 20},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Finalize() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Finalize() failed: %v", err)
			}
			if tt.cfg != tt.want {
				t.Errorf("config = %+v, want %+v", tt.cfg, tt.want)
			}
		})
	}
}

func TestConfig_Finalize_Env(t *testing.T) {
	t.Setenv("TEST_PAGE_DEFAULT", "25")

	cfg := pagination.Config{}
	env := &pagination.Env{DefaultPageSize: "TEST_PAGE_DEFAULT"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.DefaultPageSize != 25 {
		t.Errorf("DefaultPageSize = %d, want 25", cfg.DefaultPageSize)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 50, MaxPageSize: 200}
	cfg.Merge(&pagination.Config{MaxPageSize: 100})

	if cfg.DefaultPageSize != 50 {
		t.Errorf("DefaultPageSize = %d, want 50", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", cfg.MaxPageSize)
	}
}
