// Package gitlog reads recent commit subjects from a local repository for
// the comment, pr and squash commands.
package gitlog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// DefaultCount is how many commits are read when Query.Count is unset.
const DefaultCount = 5

var (
	ErrNotRepository = errors.New("not a git repository")
	ErrEmptyPath     = errors.New("repository path cannot be empty")
)

// Repo is an opened repository.
type Repo struct {
	path string
	repo *gogit.Repository
}

// Query selects which commits Subjects returns.
type Query struct {
	Count int       // at most this many, newest first; <= 0 means DefaultCount
	Since time.Time // zero means no lower bound
}

// Open opens the repository containing path, walking up to find .git.
func Open(path string) (*Repo, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", abs, ErrNotRepository)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &Repo{path: abs, repo: repo}, nil
}

// Path returns the absolute path the repository was opened from.
func (r *Repo) Path() string { return r.path }

// Subjects returns the first line of each matching commit message reachable
// from HEAD, newest first. A repository without commits yields an empty
// list.
func (r *Repo) Subjects(ctx context.Context, q Query) ([]string, error) {
	count := q.Count
	if count <= 0 {
		count = DefaultCount
	}

	opts := &gogit.LogOptions{Order: gogit.LogOrderCommitterTime}
	if !q.Since.IsZero() {
		since := q.Since
		opts.Since = &since
	}

	iter, err := r.repo.Log(opts)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	subjects := make([]string, 0, count)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s := Subject(c.Message); s != "" {
			subjects = append(subjects, s)
		}
		if len(subjects) >= count {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk commits: %w", err)
	}
	return subjects, nil
}

// Subject returns the first non-blank line of a commit message.
func Subject(message string) string {
	for _, line := range strings.Split(message, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
