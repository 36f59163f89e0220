package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
)

// FileStorage is the development backend: both tables live in memory
// under one RWMutex and are flushed to JSON files by debounced save
// workers. The mutex makes upserts atomic from the caller's view, same
// as the Postgres ON CONFLICT statement.
type FileStorage struct {
	users    map[string]*internal.User               // email -> User
	profiles map[string]*internal.TemperatureProfile // email -> profile
	mu       sync.RWMutex

	usersFile    string
	profilesFile string

	saveUsersChan    chan struct{}
	saveProfilesChan chan struct{}
	shutdownChan     chan struct{}
	saveDelay        time.Duration

	logger internal.Logger
}

// NewFileStorage loads existing data and starts the save workers.
func NewFileStorage(usersFile, profilesFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		users:            make(map[string]*internal.User),
		profiles:         make(map[string]*internal.TemperatureProfile),
		usersFile:        usersFile,
		profilesFile:     profilesFile,
		saveUsersChan:    make(chan struct{}, 1),
		saveProfilesChan: make(chan struct{}, 1),
		shutdownChan:     make(chan struct{}),
		saveDelay:        500 * time.Millisecond,
		logger:           logger,
	}

	if err := s.loadUsers(); err != nil {
		return nil, fmt.Errorf("storage: failed to load users: %w", err)
	}
	if err := s.loadProfiles(); err != nil {
		return nil, fmt.Errorf("storage: failed to load profiles: %w", err)
	}

	go s.saveWorker(s.saveUsersChan, s.saveUsers)
	go s.saveWorker(s.saveProfilesChan, s.saveProfiles)

	return s, nil
}

func (s *FileStorage) loadUsers() error {
	file, err := os.Open(s.usersFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var users []*internal.User
	if err := json.NewDecoder(file).Decode(&users); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.Email] = u
	}
	return nil
}

func (s *FileStorage) loadProfiles() error {
	file, err := os.Open(s.profilesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var profiles []*internal.TemperatureProfile
	if err := json.NewDecoder(file).Decode(&profiles); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		s.profiles[p.Email] = p
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveUsers() error {
	s.mu.RLock()
	users := make([]*internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.usersFile, users)
}

func (s *FileStorage) saveProfiles() error {
	s.mu.RLock()
	profiles := make([]*internal.TemperatureProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.profilesFile, profiles)
}

// saveWorker batches writes: a burst of upserts becomes one flush.
func (s *FileStorage) saveWorker(signal chan struct{}, save func() error) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: save failed: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func signalSave(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// --- UserRepository ---

func (s *FileStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return nil, internal.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *FileStorage) UpsertUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	copied := *user
	s.users[user.Email] = &copied
	s.mu.Unlock()

	signalSave(s.saveUsersChan)
	return nil
}

// --- ProfileRepository ---

func (s *FileStorage) GetProfile(ctx context.Context, email string) (*internal.TemperatureProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[email]
	if !ok {
		return nil, internal.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *FileStorage) UpsertProfile(ctx context.Context, profile *internal.TemperatureProfile) error {
	s.mu.Lock()
	copied := *profile
	s.profiles[profile.Email] = &copied
	s.mu.Unlock()

	signalSave(s.saveProfilesChan)
	return nil
}

func (s *FileStorage) DeleteProfile(ctx context.Context, email string) error {
	s.mu.Lock()
	_, ok := s.profiles[email]
	if !ok {
		s.mu.Unlock()
		return internal.ErrNotFound
	}
	delete(s.profiles, email)
	s.mu.Unlock()

	signalSave(s.saveProfilesChan)
	return nil
}

func (s *FileStorage) ListProfiles(ctx context.Context) ([]internal.TemperatureProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]internal.TemperatureProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

// Close stops the save workers and flushes pending data synchronously.
func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	if err := s.saveUsers(); err != nil {
		return err
	}
	return s.saveProfiles()
}

// --- Compile-time assertions ---
var _ UserRepository = (*FileStorage)(nil)
var _ ProfileRepository = (*FileStorage)(nil)
