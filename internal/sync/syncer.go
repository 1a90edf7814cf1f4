// Package sync pulls ByFin contract addresses from a remote deployments
// manifest into the config's address book.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/TechyByFin/byfin-dashboard/internal/config"
	"go.uber.org/zap"
)

// ErrNoSource is returned by Run when no manifest URL is configured.
var ErrNoSource = errors.New("no sync source configured")

// Manifest is the structure of a deployments.json manifest: logical contract
// name, then chain id, then the deployment.
type Manifest struct {
	Contracts map[string]map[string]ManifestEntry `json:"contracts"`
}

// ManifestEntry is a single contract deployment entry.
type ManifestEntry struct {
	Address string `json:"address"`
}

// Report lists what a Run changed in the address book.
type Report struct {
	Updated   []string
	Unchanged []string
	Skipped   []string // unknown names or invalid addresses
}

// Syncer fetches the manifest and applies it to the config.
type Syncer struct {
	cfg    *config.Config
	client *http.Client
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(s *Syncer) { s.client = c } }

// WithLogger sets the logger used for skipped entries.
func WithLogger(l *zap.Logger) Option { return func(s *Syncer) { s.log = l } }

// New creates a new Syncer.
func New(cfg *config.Config, opts ...Option) *Syncer {
	s := &Syncer{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run fetches the manifest from the configured source, records every entry
// for the configured chain in the address book and saves the config.
// Nothing is saved when the manifest cannot be fetched.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	if s.cfg.SyncSource == "" {
		return nil, fmt.Errorf("%w (run: byfin config sync <url>)", ErrNoSource)
	}

	manifest, err := s.fetchManifest(ctx, s.cfg.SyncSource)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}

	chainKey := strconv.FormatInt(s.cfg.ChainID, 10)
	names := make([]string, 0, len(manifest.Contracts))
	for name := range manifest.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)

	rep := &Report{}
	for _, name := range names {
		entry, ok := manifest.Contracts[name][chainKey]
		if !ok {
			continue
		}
		before := s.cfg.Contracts[name]
		if err := s.cfg.SetContract(name, entry.Address); err != nil {
			s.log.Warn("skipping manifest entry", zap.String("name", name), zap.Error(err))
			rep.Skipped = append(rep.Skipped, name)
			continue
		}
		if s.cfg.Contracts[name] == before {
			rep.Unchanged = append(rep.Unchanged, name)
		} else {
			rep.Updated = append(rep.Updated, name)
		}
	}

	s.cfg.LastSynced = s.now().UTC().Format(time.RFC3339)
	if err := s.cfg.Save(); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	return rep, nil
}

// SetSource sets the remote manifest URL and saves the config.
func (s *Syncer) SetSource(url string) error {
	s.cfg.SyncSource = url
	return s.cfg.Save()
}

func (s *Syncer) fetchManifest(ctx context.Context, url string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
