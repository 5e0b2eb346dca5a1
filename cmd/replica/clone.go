package main

import (
	"encoding/hex"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/replica"
	"go.uber.org/zap"
)

type cloneFlags struct {
	in       string
	out      string
	from     string
	to       string
	exclude  []string
	redact   []string
	with     string
	mask     map[string]string
	hash     map[string]string
	encrypt  []string
	decrypt  []string
	cipher   string
	keyFile  string
	maxDepth int
}

func newCloneCmd(a *app) *cobra.Command {
	f := &cloneFlags{}

	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Deep-clone a record file",
		Long: `Decode a record, deep-clone it and encode the clone.

Example:
  replica clone --in user.json --to yaml --exclude password --redact email --with '***'
  replica clone --in user.json --mask email=email,card=card --hash ssn=sha256
  replica clone --in user.json --encrypt notes --cipher envelope --key-file master.key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runClone(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.in, "in", "", "input file (- for stdin)")
	cmd.Flags().StringVar(&f.out, "out", "", "output file (default stdout)")
	cmd.Flags().StringVar(&f.from, "from", "", "input format: json, yaml, msgpack or bson")
	cmd.Flags().StringVar(&f.to, "to", "", "output format (default input format)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "top-level keys to drop")
	cmd.Flags().StringSliceVar(&f.redact, "redact", nil, "top-level keys whose values are replaced")
	cmd.Flags().StringVar(&f.with, "with", "[REDACTED]", "replacement for redacted values")
	cmd.Flags().StringToStringVar(&f.mask, "mask", nil, "key=type pairs: ssn, email, phone, card, ip, uuid, iban, name")
	cmd.Flags().StringToStringVar(&f.hash, "hash", nil, "key=algo pairs: argon2, bcrypt, sha256, sha512, blake2b")
	cmd.Flags().StringSliceVar(&f.encrypt, "encrypt", nil, "top-level keys to encrypt")
	cmd.Flags().StringSliceVar(&f.decrypt, "decrypt", nil, "top-level keys to decrypt")
	cmd.Flags().StringVar(&f.cipher, "cipher", string(replica.EncryptAES), "cipher for --encrypt/--decrypt: aes or envelope")
	cmd.Flags().StringVar(&f.keyFile, "key-file", "", "file holding the hex-encoded cipher key")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "maximum nesting depth (0 for unlimited)")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func (a *app) runClone(cmd *cobra.Command, f *cloneFlags) error {
	ctx := cmd.Context()
	start := time.Now()

	src, err := a.decodeInput(cmd, f.in, f.from)
	if err != nil {
		return err
	}

	enc, err := outputCodec(f)
	if err != nil {
		a.logger.Error("resolve output format", zap.Error(err))
		return err
	}

	opts, err := f.options()
	if err != nil {
		a.logger.Error("invalid clone options", zap.Error(err))
		return err
	}

	clone, err := replica.New(opts...).Clone(ctx, src)
	if err != nil {
		a.logger.Error("clone failed", zap.String("in", f.in), zap.Error(err))
		return err
	}

	data, err := replica.Encode(ctx, enc, clone)
	if err != nil {
		a.logger.Error("encode failed", zap.String("content_type", enc.ContentType()), zap.Error(err))
		return err
	}
	if err := writeOutput(f.out, data, cmd.OutOrStdout()); err != nil {
		a.logger.Error("write failed", zap.String("out", f.out), zap.Error(err))
		return err
	}

	a.logger.Debug("cloned record",
		zap.String("in", f.in),
		zap.String("content_type", enc.ContentType()),
		zap.Strings("keys", clone.Keys()),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// decodeInput reads and decodes the record at path.
func (a *app) decodeInput(cmd *cobra.Command, path, format string) (*replica.Record, error) {
	dec, err := codecFor(format, path)
	if err != nil {
		a.logger.Error("resolve input format", zap.String("in", path), zap.Error(err))
		return nil, err
	}
	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		a.logger.Error("read failed", zap.String("in", path), zap.Error(err))
		return nil, err
	}
	r, err := replica.Decode(cmd.Context(), dec, data)
	if err != nil {
		a.logger.Error("decode failed", zap.String("in", path), zap.Error(err))
		return nil, err
	}
	a.logger.Debug("decoded record", zap.String("in", path), zap.Int("keys", r.Len()))
	return r, nil
}

// outputCodec picks --to, then the extension of --out, then the input format.
func outputCodec(f *cloneFlags) (replica.Codec, error) {
	if f.to != "" {
		return codecFor(f.to, "")
	}
	if f.out != "" && f.out != "-" {
		if c, err := codecFor("", f.out); err == nil {
			return c, nil
		}
	}
	return codecFor(f.from, f.in)
}

// options translates the flags into clone options. A key may be claimed by
// at most one of --redact, --mask, --hash, --encrypt and --decrypt.
func (f *cloneFlags) options() ([]replica.Option, error) {
	claimed := make(map[string]string)
	claim := func(flag string, keys ...string) error {
		for _, k := range keys {
			if prev, ok := claimed[k]; ok && prev != flag {
				return fmt.Errorf("key %q is named by both --%s and --%s", k, prev, flag)
			}
			claimed[k] = flag
		}
		return nil
	}

	opts := []replica.Option{replica.WithExclude(f.exclude...)}
	if len(f.redact) > 0 {
		if err := claim("redact", f.redact...); err != nil {
			return nil, err
		}
		opts = append(opts, replica.WithRedact(f.with, f.redact...))
	}
	for _, key := range slices.Sorted(maps.Keys(f.mask)) {
		if err := claim("mask", key); err != nil {
			return nil, err
		}
		m, err := replica.MaskerFor(replica.MaskType(f.mask[key]))
		if err != nil {
			return nil, err
		}
		opts = append(opts, replica.WithMask(m, key))
	}
	for _, key := range slices.Sorted(maps.Keys(f.hash)) {
		if err := claim("hash", key); err != nil {
			return nil, err
		}
		h, err := replica.HasherFor(replica.HashAlgo(f.hash[key]))
		if err != nil {
			return nil, err
		}
		opts = append(opts, replica.WithHash(h, key))
	}
	if len(f.encrypt) > 0 || len(f.decrypt) > 0 {
		if err := claim("encrypt", f.encrypt...); err != nil {
			return nil, err
		}
		if err := claim("decrypt", f.decrypt...); err != nil {
			return nil, err
		}
		enc, err := f.encryptor()
		if err != nil {
			return nil, err
		}
		opts = append(opts, replica.WithEncrypt(enc, f.encrypt...), replica.WithDecrypt(enc, f.decrypt...))
	}
	if f.maxDepth > 0 {
		opts = append(opts, replica.WithMaxDepth(f.maxDepth))
	}
	return opts, nil
}

func (f *cloneFlags) encryptor() (replica.Encryptor, error) {
	if f.keyFile == "" {
		return nil, fmt.Errorf("--key-file is required with --encrypt or --decrypt")
	}
	raw, err := os.ReadFile(f.keyFile)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("key file: %w", err)
	}
	return replica.EncryptorFor(replica.EncryptAlgo(f.cipher), key)
}
