package util

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"albumsync/pkg/albums"
	"albumsync/pkg/config"
	"albumsync/pkg/errors"
	"albumsync/pkg/fsutil"
	"albumsync/pkg/index"
	"albumsync/pkg/mount"
	"albumsync/pkg/photos"
	"albumsync/pkg/scan"
)

// NewEngine wires a synchronization engine against the real DSM host: it
// parses the sync config, loads the credentials from the environment, and
// logs in.
func NewEngine() (*albums.Engine, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, errors.WithContext(err, "parse sync config")
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	client, err := photos.Dial(creds, clock)
	if err != nil {
		return nil, err
	}

	runner := fsutil.ExecRunner{}
	indexCache := index.NewCache(client)
	return &albums.Engine{
		Client:   client,
		Config:   cfg,
		Username: creds.Username,
		Index:    indexCache,
		Waiter: &index.Waiter{
			Cache:    indexCache,
			Attempts: cfg.Indexing.FilterWaitAttempts,
			Delay:    time.Duration(cfg.Indexing.FilterWaitDelay) * time.Second,
			Clock:    clock,
		},
		Reindexer: index.NewReindexer(
			client, clock,
			time.Duration(cfg.Indexing.ReindexSettleSeconds)*time.Second,
			cfg.Indexing.ReindexEnabled()),
		Targeted: index.DetectTargeted(cfg.Indexing.PersonalReindexCommand, creds.Username, runner),
		Scanner:  &scan.Scanner{FS: afero.NewOsFs(), MaxDepth: cfg.Media.ScanMaxDepth},
		Mounts:   mount.NewManager(cfg, creds.Username, runner),
		Albums:   albums.NewCache(client),
	}, nil
}
