package storage

import "github.com/rbkantor/eightsleep-nosub-app/internal"

func NewFileRepositories(usersFile, profilesFile string, logger internal.Logger) (UserRepository, ProfileRepository, error) {
	storage, err := NewFileStorage(usersFile, profilesFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return storage, storage, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (UserRepository, ProfileRepository, error) {
	storage, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return nil, nil, err
	}
	return storage, storage, nil
}
