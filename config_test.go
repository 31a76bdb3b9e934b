package pathoram

import "testing"

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "valid config",
			cfg:     Config{NumItems: 100, PayloadLen: 16},
			wantErr: nil,
		},
		{
			name:    "zero items",
			cfg:     Config{NumItems: 0, PayloadLen: 16},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "negative items",
			cfg:     Config{NumItems: -1, PayloadLen: 16},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero payload length",
			cfg:     Config{NumItems: 100, PayloadLen: 0},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := Config{NumItems: 100, PayloadLen: 16}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cipher != "aes256gcm" {
		t.Errorf("Cipher = %q, want default aes256gcm", cfg.Cipher)
	}
	height, _, _ := cfg.treeParams()
	if cfg.StashLimit != 8*height {
		t.Errorf("StashLimit = %d, want default %d", cfg.StashLimit, 8*height)
	}
}

// TestTreeParams checks the tree-sizing formula against the literal
// scenarios in spec.md §3 and §8: nb_items=183 -> H=6, and the minimum
// live tree nb_items=4 -> H=1.
func TestTreeParams(t *testing.T) {
	tests := []struct {
		name          string
		numItems      int
		wantHeight    int
		wantNumLeaves int
	}{
		{name: "minimum live tree", numItems: 4, wantHeight: 1, wantNumLeaves: 1},
		{name: "not a multiple of bucket size", numItems: 183, wantHeight: 6, wantNumLeaves: 32},
		{name: "power of two times bucket size", numItems: 64, wantHeight: 5, wantNumLeaves: 16},
		{name: "one item", numItems: 1, wantHeight: 1, wantNumLeaves: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{NumItems: tt.numItems, PayloadLen: 1}
			height, numLeaves, totalBuckets := cfg.treeParams()
			if height != tt.wantHeight {
				t.Errorf("height = %d, want %d", height, tt.wantHeight)
			}
			if numLeaves != tt.wantNumLeaves {
				t.Errorf("numLeaves = %d, want %d", numLeaves, tt.wantNumLeaves)
			}
			if totalBuckets != (1<<uint(height))-1 {
				t.Errorf("totalBuckets = %d, want %d", totalBuckets, (1<<uint(height))-1)
			}
		})
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{0, 4, 0},
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{183, 4, 46},
	}
	for _, tt := range tests {
		if got := ceilDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("ceilDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
