package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/shoplens/shoplens-backend/pkg/config"
	"github.com/shoplens/shoplens-backend/pkg/security"
)

// Hashes a plaintext ops key with the configured argon2id parameters.
// The output goes into SHOPLENS_OPS_KEY_HASH; the plaintext never does.
func main() {
	key := flag.String("key", "", "plaintext ops key to hash")
	flag.Parse()

	if *key == "" {
		fmt.Fprintln(os.Stderr, "missing -key")
		os.Exit(1)
	}

	_ = godotenv.Load()

	var ops config.OpsConfig
	if cfg, err := config.Load(); err == nil {
		ops = cfg.Ops
	}

	hash, err := security.HashOpsKey(*key, ops)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash ops key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
