package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// Entry holds the files a commit added or modified, keyed by repo-relative path.
type Entry struct {
	Hash  string
	Files map[string][]byte
}

// validateRoot validates and normalizes a git repository root path.
// Returns the cleaned absolute path or an error if invalid.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

func open(root string) (*gogit.Repository, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpenWithOptions(validRoot, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", root, err)
	}
	return repo, nil
}

// RepoMetadata returns (repo, commit, branch) best-effort for the given root.
// Empty strings are returned on failure.
func RepoMetadata(root string) (string, string, string) {
	r, err := open(root)
	if err != nil {
		return "", "", ""
	}
	repo := ""
	if remote, err := r.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		s := strings.TrimSuffix(remote.Config().URLs[0], ".git")
		if i := strings.LastIndex(s, ":"); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.Index(s, "github.com/"); i >= 0 {
			s = s[i+len("github.com/"):]
		}
		repo = strings.TrimPrefix(s, "//")
	}
	ref, err := r.Head()
	if err != nil {
		return repo, "", ""
	}
	branch := ""
	if ref.Name().IsBranch() {
		branch = ref.Name().Short()
	}
	return repo, ref.Hash().String(), branch
}

// LastNCommits walks back from HEAD and returns up to n commits with the
// text content of every file each commit added or modified. Binary blobs and
// deletions are skipped.
func LastNCommits(root string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	repo, err := open(root)
	if err != nil {
		return nil, err
	}
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	iter, err := repo.Log(&gogit.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []Entry
	err = iter.ForEach(func(c *object.Commit) error {
		if len(entries) >= n {
			return storer.ErrStop
		}
		files, err := changedFiles(c)
		if err != nil {
			return fmt.Errorf("commit %s: %w", c.Hash, err)
		}
		entries = append(entries, Entry{Hash: c.Hash.String(), Files: files})
		return nil
	})
	return entries, err
}

func changedFiles(c *object.Commit) (map[string][]byte, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	files := map[string][]byte{}
	if c.NumParents() == 0 {
		err := tree.Files().ForEach(func(f *object.File) error {
			return addFile(files, f.Name, f)
		})
		return files, err
	}
	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, err
	}
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return nil, err
		}
		if action == merkletrie.Delete {
			continue
		}
		_, to, err := ch.Files()
		if err != nil {
			return nil, err
		}
		if to == nil {
			continue
		}
		if err := addFile(files, ch.To.Name, to); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func addFile(files map[string][]byte, name string, f *object.File) error {
	if bin, err := f.IsBinary(); err != nil || bin {
		return nil
	}
	content, err := f.Contents()
	if err != nil {
		return err
	}
	files[name] = []byte(content)
	return nil
}
