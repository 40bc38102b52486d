package manifest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/ariel-frischer/imagelog/internal/retry"
)

// DefaultInspectCommand is the command used to read image metadata.
// The image reference is appended as its last argument.
const DefaultInspectCommand = "skopeo inspect"

// DefaultTransport is prepended to registry references handed to the inspect command.
const DefaultTransport = "docker://"

// Store fetches manifests by image reference.
type Store interface {
	// Inspect returns the manifest for ref. It returns an error wrapping
	// ErrUnavailable when the reference could not be fetched.
	Inspect(ctx context.Context, ref string) (*Manifest, error)
}

// CommandFunc builds the command to execute. It matches exec.CommandContext.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// CommandStore implements Store by running an inspect command such as
// `skopeo inspect` and decoding its JSON output. Each fetch is independent and
// safe to retry.
type CommandStore struct {
	argv      []string
	transport string
	policy    retry.Policy
	command   CommandFunc
}

// CommandStoreOption configures a CommandStore.
type CommandStoreOption func(*CommandStore)

// WithTransport overrides the reference transport prefix.
func WithTransport(transport string) CommandStoreOption {
	return func(s *CommandStore) {
		s.transport = transport
	}
}

// WithPolicy overrides the retry policy.
func WithPolicy(p retry.Policy) CommandStoreOption {
	return func(s *CommandStore) {
		s.policy = p
	}
}

// WithCommandFunc overrides how the inspect command is built.
func WithCommandFunc(fn CommandFunc) CommandStoreOption {
	return func(s *CommandStore) {
		s.command = fn
	}
}

// NewCommandStore creates a CommandStore from a shell-quoted command line.
func NewCommandStore(commandLine string, opts ...CommandStoreOption) (*CommandStore, error) {
	if strings.TrimSpace(commandLine) == "" {
		commandLine = DefaultInspectCommand
	}
	argv, err := shlex.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("parsing inspect command %q: %w", commandLine, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("inspect command %q produces no command", commandLine)
	}

	s := &CommandStore{
		argv:      argv,
		transport: DefaultTransport,
		policy:    retry.DefaultPolicy(),
		command:   exec.CommandContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Inspect runs the inspect command for ref, retrying per the store's policy.
func (s *CommandStore) Inspect(ctx context.Context, ref string) (*Manifest, error) {
	target := ref
	if s.transport != "" && !strings.Contains(ref, "://") {
		target = s.transport + ref
	}

	policy := s.policy
	policy.OnFailure = func(attempt uint, err error) {
		slog.Warn("Failed to inspect image",
			"ref", ref, "attempt", attempt, "of", s.policy.Attempts, "retry_in", s.policy.Delay, "error", err)
	}

	var m *Manifest
	err := retry.Do(ctx, policy, func() error {
		out, err := s.run(ctx, target)
		if err != nil {
			return err
		}
		decoded, err := Decode(out)
		if err != nil {
			return fmt.Errorf("decoding inspect output: %w", err)
		}
		m = decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, ref, err)
	}
	return m, nil
}

func (s *CommandStore) run(ctx context.Context, target string) ([]byte, error) {
	args := append(append([]string{}, s.argv[1:]...), target)
	cmd := s.command(ctx, s.argv[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", s.argv[0], err, msg)
		}
		return nil, fmt.Errorf("%s: %w", s.argv[0], err)
	}
	return stdout.Bytes(), nil
}

// Reference joins a registry prefix, image name and tag.
func Reference(registry, image, tag string) string {
	if registry != "" && !strings.HasSuffix(registry, "/") {
		registry += "/"
	}
	return registry + image + ":" + tag
}
