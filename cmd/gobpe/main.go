// Command gobpe trains a byte-pair-encoding vocabulary from a text
// corpus and applies it to encode or decode text. This is the
// out-of-core entry point: it owns flag parsing, artifact
// persistence, and exit codes, and calls into package bpe for
// everything algorithmic.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zhubert/gobpe/bpe"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gobpe",
		Short: "Train and run a byte-pair-encoding tokenizer",
	}
	root.AddCommand(newTrainCmd(), newEncodeCmd(), newDecodeCmd())
	return root
}

func newTrainCmd() *cobra.Command {
	var (
		inputPath        string
		vocabSize        int
		specials         []string
		saveDir          string
		desiredNumChunks int
		verbose          bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a BPE vocabulary and merge list from a corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			trainer := bpe.NewTrainer(bpe.TrainConfig{
				VocabSize:        vocabSize,
				Specials:         specials,
				DesiredNumChunks: desiredNumChunks,
				Logger:           bpe.NewZapLogger(logger),
			})

			vocab, merges, err := trainer.Train(cmd.Context(), inputPath)
			if err != nil {
				return errors.Wrap(err, "train")
			}

			return saveArtifacts(saveDir, vocab, merges, specials)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to the training corpus (required)")
	cmd.Flags().IntVar(&vocabSize, "vocab-size", 512, "target vocabulary size, including byte and special entries")
	cmd.Flags().StringSliceVar(&specials, "special", nil, "special token, repeatable, in the order they should be assigned IDs")
	cmd.Flags().StringVar(&saveDir, "save-dir", ".", "directory to write vocab.json/merges.txt/special_tokens.txt into")
	cmd.Flags().IntVar(&desiredNumChunks, "chunks", 4, "hint for the number of parallel pre-tokenization workers")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "emit debug-level training progress")
	cmd.MarkFlagRequired("input") //nolint:errcheck

	return cmd
}

func newEncodeCmd() *cobra.Command {
	var (
		vocabDir string
		text     string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode text to token IDs using a trained vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := loadEncoder(vocabDir)
			if err != nil {
				return err
			}
			ids := enc.Encode(text)
			for i, id := range ids {
				if i > 0 {
					fmt.Print(" ")
				}
				fmt.Print(id)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().StringVar(&vocabDir, "vocab-dir", ".", "directory containing vocab.json/merges.txt/special_tokens.txt")
	cmd.Flags().StringVar(&text, "text", "", "text to encode (required)")
	cmd.MarkFlagRequired("text") //nolint:errcheck
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var (
		vocabDir string
		ids      []int
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode token IDs back to text using a trained vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := loadEncoder(vocabDir)
			if err != nil {
				return err
			}
			symbolIDs := make([]bpe.ID, len(ids))
			for i, id := range ids {
				symbolIDs[i] = bpe.ID(id)
			}
			fmt.Println(enc.Decode(symbolIDs))
			return nil
		},
	}
	cmd.Flags().StringVar(&vocabDir, "vocab-dir", ".", "directory containing vocab.json/merges.txt/special_tokens.txt")
	cmd.Flags().IntSliceVar(&ids, "ids", nil, "token IDs to decode (required)")
	cmd.MarkFlagRequired("ids") //nolint:errcheck
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func saveArtifacts(dir string, vocab *bpe.Vocabulary, merges []bpe.MergeRule, specials []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create save dir")
	}
	if err := writeFile(dir+"/vocab.json", func(f *os.File) error { return bpe.SaveVocab(f, vocab) }); err != nil {
		return err
	}
	if err := writeFile(dir+"/merges.txt", func(f *os.File) error { return bpe.SaveMerges(f, merges) }); err != nil {
		return err
	}
	if len(specials) > 0 {
		if err := writeFile(dir+"/special_tokens.txt", func(f *os.File) error { return bpe.SaveSpecialTokens(f, specials) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}

func loadEncoder(dir string) (*bpe.Encoder, error) {
	vocabFile, err := os.Open(dir + "/vocab.json")
	if err != nil {
		return nil, errors.Wrap(err, "open vocab.json")
	}
	defer vocabFile.Close()
	vocab, err := bpe.LoadVocab(vocabFile)
	if err != nil {
		return nil, err
	}

	mergesFile, err := os.Open(dir + "/merges.txt")
	if err != nil {
		return nil, errors.Wrap(err, "open merges.txt")
	}
	defer mergesFile.Close()
	merges, err := bpe.LoadMerges(mergesFile)
	if err != nil {
		return nil, err
	}

	var specials []string
	if specialsFile, err := os.Open(dir + "/special_tokens.txt"); err == nil {
		defer specialsFile.Close()
		specials, err = bpe.LoadSpecialTokens(specialsFile)
		if err != nil {
			return nil, err
		}
	}

	return bpe.NewEncoder(vocab, merges, specials), nil
}
