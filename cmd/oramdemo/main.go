// Command oramdemo builds a small Path-ORAM tree, inserts a record, and
// reads it back — a modernized, configurable stand-in for the original
// source's hardcoded main.rs driver.
package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	pathoram "github.com/etclab/pathoram-go"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		nbItems    = pflag.Int("nb-items", 128, "number of logical records the tree is sized for")
		payloadLen = pflag.Int("payload-len", 16, "payload length in bytes for every record")
		cipher     = pflag.String("cipher", "aes256gcm", "AEAD cipher: aes256gcm or chacha20poly1305")
		logLevel   = pflag.String("log-level", "info", "zap log level: debug, info, warn, error")
		configPath = pflag.String("config", "", "optional HuJSON config file; flags set explicitly take precedence over it")
	)
	pflag.Parse()

	fileCfg, err := loadFileConfig(*configPath)
	if err != nil {
		return err
	}
	if fileCfg.NumItems != 0 && !pflag.CommandLine.Changed("nb-items") {
		*nbItems = fileCfg.NumItems
	}
	if fileCfg.PayloadLen != 0 && !pflag.CommandLine.Changed("payload-len") {
		*payloadLen = fileCfg.PayloadLen
	}
	if fileCfg.Cipher != "" && !pflag.CommandLine.Changed("cipher") {
		*cipher = fileCfg.Cipher
	}

	log, err := newLogger(*logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fmt.Println("Hello Path-ORAM!")

	cfg := pathoram.Config{
		NumItems:   *nbItems,
		PayloadLen: *payloadLen,
		Cipher:     *cipher,
	}

	client, err := pathoram.NewClient(cfg, log)
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}

	oram, err := buildTree(client, cfg)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}

	id := pathoram.RecordIDFromUint64(1)
	payload := make([]byte, *payloadLen)
	copy(payload, []byte("Bruce"))

	leaf, err := insertRandomLeaf(oram)
	if err != nil {
		return err
	}

	_, err = client.Access(oram, leaf, []pathoram.Record{{ID: id, Payload: payload}}, nil)
	if err != nil {
		return fmt.Errorf("insert access: %w", err)
	}

	readLeaf, ok := lookupLeaf(client, id)
	if !ok {
		return fmt.Errorf("record %x vanished from position map", id)
	}

	records, err := client.Access(oram, readLeaf, nil, []pathoram.RecordID{id})
	if err != nil {
		return fmt.Errorf("read access: %w", err)
	}

	for _, r := range records {
		if r.ID == id {
			fmt.Printf("record %x payload: %q\n", r.ID, trimTrailingZeros(r.Payload))
			return nil
		}
	}
	return fmt.Errorf("record %x not found on its own path", id)
}

// buildTree seeds a fresh tree with dummy records from the client's
// CSPRNG, per spec §4.5's initialization contract.
func buildTree(client *pathoram.Client, cfg pathoram.Config) (*pathoram.Oram, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	_, _, totalBuckets := cfg.TreeParams()
	pool, err := client.GenerateDummyItems(totalBuckets*pathoram.BucketSize, cfg.PayloadLen)
	if err != nil {
		return nil, err
	}
	return pathoram.NewInMemoryOram(cfg, pool)
}

func insertRandomLeaf(oram *pathoram.Oram) (int, error) {
	n := oram.NumLeaves()
	if n <= 0 {
		return 0, fmt.Errorf("oram has no leaves")
	}
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return 0, err
	}
	v := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if v < 0 {
		v = -v
	}
	return v % n, nil
}

func lookupLeaf(client *pathoram.Client, id pathoram.RecordID) (int, bool) {
	return client.PositionMap().Get(id)
}

func trimTrailingZeros(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return b[:i]
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
