// Package git lists the commits between two image revisions. It uses the
// go-git library so no git binary is needed on the build host.
package git

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const shortHashLen = 7

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Commit is one entry of a commit log.
type Commit struct {
	Hash      string
	ShortHash string
	Author    string
	Subject   string
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
// If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logDebug("[git] repository opened successfully")
	return repo, nil
}

// IsRepository reports whether path is inside a git repository.
func IsRepository(path string) bool {
	_, err := openRepo(path)
	return err == nil
}

// Log returns the commits reachable from end but not from start, newest
// first, like `git log start..end`. Both revisions may be anything go-git
// can resolve: full or abbreviated hashes, branches or tags.
func Log(start, end, workdir string) ([]Commit, error) {
	repo, err := openRepo(workdir)
	if err != nil {
		return nil, err
	}

	startHash, err := resolve(repo, start)
	if err != nil {
		return nil, err
	}
	endHash, err := resolve(repo, end)
	if err != nil {
		return nil, err
	}

	excluded, err := ancestors(repo, startHash)
	if err != nil {
		return nil, err
	}
	logDebug("[git] %d commits reachable from %s", len(excluded), start)

	iter, err := repo.Log(&git.LogOptions{From: endHash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("reading log from %s: %w", end, err)
	}
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if _, ok := excluded[c.Hash]; ok {
			return nil
		}
		commits = append(commits, toCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking log from %s: %w", end, err)
	}

	logDebug("[git] %d commits in %s..%s", len(commits), start, end)
	return commits, nil
}

func resolve(repo *git.Repository, rev string) (plumbing.Hash, error) {
	if rev == "" {
		return plumbing.ZeroHash, errors.New("empty revision")
	}
	h, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving revision %s: %w", rev, err)
	}
	return *h, nil
}

func ancestors(repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("reading log from %s: %w", from, err)
	}
	defer iter.Close()

	seen := make(map[plumbing.Hash]struct{})
	err = iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking log from %s: %w", from, err)
	}
	return seen, nil
}

func toCommit(c *object.Commit) Commit {
	hash := c.Hash.String()
	subject, _, _ := strings.Cut(c.Message, "\n")
	return Commit{
		Hash:      hash,
		ShortHash: hash[:shortHashLen],
		Author:    c.Author.Name,
		Subject:   strings.TrimSpace(subject),
	}
}
