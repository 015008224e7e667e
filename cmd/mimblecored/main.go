// Mimblecore validation daemon.
//
// Usage:
//
//	mimblecored --block=<path>    Validate a block body against the open UTXO set
//	mimblecored --help            Show help
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ironpeak/mimblecore/config"
	"github.com/ironpeak/mimblecore/internal/consensus"
	klog "github.com/ironpeak/mimblecore/internal/log"
	"github.com/ironpeak/mimblecore/internal/storage"
	"github.com/ironpeak/mimblecore/internal/utxo"
	"github.com/ironpeak/mimblecore/internal/validation"
	"github.com/ironpeak/mimblecore/pkg/block"
)

func main() {
	// ── 1. Load config (defaults → file → flags) ────────────────────────
	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	blockPath := flag.String("block", "", "path to a JSON-encoded candidate block to validate")
	flag.CommandLine.Parse(os.Args[1:])

	// ── 2. Init logger ───────────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logs dir: %v\n", err)
			os.Exit(1)
		}
		logFile = logsDir + "/mimblecored.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger := klog.WithComponent("node")

	genesis := config.GenesisFor(cfg.Network)
	logger.Info().
		Str("chain_id", genesis.ChainID).
		Str("network", string(cfg.Network)).
		Str("consensus", genesis.Protocol.Consensus.Type).
		Msg("Starting Mimblecore validation daemon")

	// ── 3. Open storage and the UTXO set ─────────────────────────────────
	db, err := storage.NewBadger(cfg.ChainDataDir())
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.ChainDataDir()).Msg("Failed to open database")
	}
	defer db.Close()

	outputs := utxo.NewStore(db)
	mmr := utxo.NewMmrCalculator(outputs)
	logger.Info().Str("path", cfg.ChainDataDir()).Msg("Database opened")

	// ── 4. Create the header-consensus engine ────────────────────────────
	engine, err := createEngine(genesis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create consensus engine")
	}
	if poa, ok := engine.(*consensus.PoA); ok {
		if genesis.Protocol.Consensus.ValidatorStake > 0 {
			poa.SetStakeChecker(consensus.NewUTXOStakeChecker(outputs, genesis.Protocol.Consensus.ValidatorStake))
			logger.Info().Uint64("min_stake", genesis.Protocol.Consensus.ValidatorStake).Msg("Validator staking enabled")
		}
		tracker := consensus.NewValidatorTracker(time.Duration(genesis.Protocol.Consensus.BlockTime) * time.Second)
		poa.SetTracker(tracker)
	}
	headerValidator := consensus.NewValidator(engine)

	// ── 5. Create the concurrent body validator ──────────────────────────
	rules := validation.NewDefaultConsensusParams()
	bodyValidator := validation.NewBodyValidator(
		outputs,
		mmr,
		rules,
		validation.DefaultCryptoFactories(),
		cfg.Validation.BypassRangeProof,
		cfg.Validation.Concurrency,
	)

	if *blockPath == "" {
		logger.Info().Msg("No --block given, nothing to validate. Exiting.")
		return
	}

	blk, err := loadBlock(*blockPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *blockPath).Msg("Failed to load block")
	}

	if err := headerValidator.ValidateBlock(blk); err != nil {
		logger.Error().Err(err).Uint64("height", blk.Header.Height).Msg("Header rejected")
		os.Exit(1)
	}

	canonical, err := bodyValidator.ValidateBody(context.Background(), blk)
	if err != nil {
		logger.Error().Err(err).Uint64("height", blk.Header.Height).Msg("Body rejected")
		os.Exit(1)
	}

	logger.Info().
		Uint64("height", canonical.Header.Height).
		Str("output_root", hex.EncodeToString(canonical.Header.OutputMMRRoot[:8])).
		Msg("Block body accepted")
}

// createEngine builds the consensus engine named in genesis. Sub-chain
// mining and PoW-vs-PoA switching beyond this are out of scope here; the
// daemon only needs an engine capable of checking the header it is handed.
func createEngine(genesis *config.Genesis) (consensus.Engine, error) {
	switch genesis.Protocol.Consensus.Type {
	case config.ConsensusPoW:
		return consensus.NewPoW(genesis.Protocol.Consensus.InitialDifficulty, genesis.Protocol.Consensus.DifficultyAdjust, genesis.Protocol.Consensus.BlockTime)
	default:
		validators := make([][]byte, 0, len(genesis.Protocol.Consensus.Validators))
		for _, hexKey := range genesis.Protocol.Consensus.Validators {
			key, err := hex.DecodeString(hexKey)
			if err != nil {
				return nil, fmt.Errorf("decoding validator pubkey: %w", err)
			}
			validators = append(validators, key)
		}
		return consensus.NewPoA(validators, genesis.Protocol.Consensus.BlockTime)
	}
}

func loadBlock(path string) (*block.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading block file: %w", err)
	}
	var blk block.Block
	if err := json.Unmarshal(data, &blk); err != nil {
		return nil, fmt.Errorf("parsing block file: %w", err)
	}
	return &blk, nil
}
