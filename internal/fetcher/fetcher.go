package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.bug.st/downloader/v2"
)

// downloadInactivityTimeout aborts a download that stops receiving data.
const downloadInactivityTimeout = 30 * time.Second

// Outcome describes how a fetch cycle completed without an error.
type Outcome int

const (
	// OutcomeFetched means the archive was downloaded and extracted.
	OutcomeFetched Outcome = iota
	// OutcomeAlreadyPresent means the target directory already existed, so
	// the cycle did nothing (no network, no temp file).
	OutcomeAlreadyPresent
	// OutcomeEmptyArchive means the download succeeded but the archive
	// contained no entries; nothing was extracted.
	OutcomeEmptyArchive
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFetched:
		return "fetched"
	case OutcomeAlreadyPresent:
		return "already-present"
	case OutcomeEmptyArchive:
		return "empty-archive"
	}
	return "unknown"
}

// Fetcher turns one (name, url, root) triple into an unpacked directory
// under root. Cycles never overlap on the same name, so no locking is done.
type Fetcher struct {
	client http.Client
}

// New creates a Fetcher with a default HTTP client.
func New() *Fetcher {
	return &Fetcher{}
}

// Fetch runs one full cycle: idempotency gate, download, extraction,
// wrapping-folder normalization, temp archive cleanup.
//
// If <root>/<name> already exists the cycle returns immediately without
// touching the network. Otherwise the archive is downloaded to
// <root>/<name>.zip, which is removed again on every exit path — the temp
// file never outlives the cycle, whether extraction happened or not.
func (f *Fetcher) Fetch(ctx context.Context, name, url, root string) (outcome Outcome, err error) {
	targetDir := filepath.Join(root, name)
	archivePath := filepath.Join(root, name+".zip")

	if _, statErr := os.Stat(targetDir); statErr == nil {
		return OutcomeAlreadyPresent, nil
	}

	defer func() {
		rmErr := os.Remove(archivePath)
		if rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
			err = fmt.Errorf("removing temporary archive %s: %w", archivePath, rmErr)
		}
	}()

	if err := f.download(ctx, url, archivePath); err != nil {
		return OutcomeFetched, err
	}

	return extract(archivePath, root, name, targetDir)
}

// download retrieves url into dest. All failures come back as *NetworkError;
// a non-2xx status is rejected before any byte is written to dest.
func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	config := downloader.Config{
		HttpClient: f.client,
	}

	d, err := downloader.DownloadWithConfigAndContext(ctx, dest, url, config, downloader.NoResume)
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			return err
		}
		return &NetworkError{URL: url, Err: err}
	}

	if d.Resp.StatusCode < 200 || d.Resp.StatusCode >= 300 {
		_ = d.Close()
		return &NetworkError{URL: url, StatusCode: d.Resp.StatusCode}
	}

	if err := d.Run(); err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	return nil
}
