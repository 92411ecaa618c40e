package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.True(t, cfg.EnableEventLogging)
}

func TestLoadWithOptions(t *testing.T) {
	cfg, err := Load(
		WithPort("9090"),
		WithEnvironment("production"),
		WithFilesystemStorage("/tmp/images", "http://localhost:9090/files"),
		WithEventLogging(false),
	)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "fs", cfg.Storage.Type)
	assert.Equal(t, "/tmp/images", cfg.Storage.Config["base_dir"])
	assert.False(t, cfg.EnableEventLogging)
}

func TestLoadOptionError(t *testing.T) {
	_, err := Load(WithPort(""))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ServerConfig)
		expectError bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *ServerConfig) {},
		},
		{
			name:        "empty port",
			mutate:      func(c *ServerConfig) { c.Port = "" },
			expectError: true,
		},
		{
			name:        "unknown database type",
			mutate:      func(c *ServerConfig) { c.DatabaseType = "mysql" },
			expectError: true,
		},
		{
			name:        "postgres without url",
			mutate:      func(c *ServerConfig) { c.DatabaseType = "postgres" },
			expectError: true,
		},
		{
			name:        "unknown storage type",
			mutate:      func(c *ServerConfig) { c.Storage.Type = "ftp" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithDatabase(t *testing.T) {
	cfg, err := Load(WithDatabase("postgres", "postgresql://localhost/images"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "postgresql://localhost/images", cfg.DatabaseURL)

	_, err = Load(WithDatabase("postgres", ""))
	assert.Error(t, err)

	_, err = Load(WithDatabase("mysql", "mysql://x"))
	assert.Error(t, err)
}

func TestWithS3Options(t *testing.T) {
	cfg, err := Load(
		WithS3Storage("images", "us-west-2"),
		WithS3Credentials("key", "secret"),
		WithS3Endpoint("http://localhost:9000", true),
	)
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "images", cfg.Storage.Config["bucket"])
	assert.Equal(t, "us-west-2", cfg.Storage.Config["region"])
	assert.Equal(t, "key", cfg.Storage.Config["access_key_id"])
	assert.Equal(t, "http://localhost:9000", cfg.Storage.Config["endpoint"])
	assert.Equal(t, true, cfg.Storage.Config["use_path_style"])
}

func TestWithS3CredentialsRequireS3(t *testing.T) {
	_, err := Load(WithS3Credentials("key", "secret"))
	assert.Error(t, err)
}

func TestWithMinioStorage(t *testing.T) {
	cfg, err := Load(WithMinioStorage("localhost:9000", "images", "minioadmin", "minioadmin", false))
	require.NoError(t, err)

	assert.Equal(t, "minio", cfg.Storage.Type)
	assert.Equal(t, "localhost:9000", cfg.Storage.Config["endpoint"])
	assert.Equal(t, "images", cfg.Storage.Config["bucket"])
	assert.Equal(t, false, cfg.Storage.Config["use_ssl"])
}

func TestBuildServiceMemory(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	svc, err := cfg.BuildService()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildServiceFilesystem(t *testing.T) {
	cfg, err := Load(WithFilesystemStorage(t.TempDir(), ""))
	require.NoError(t, err)

	svc, err := cfg.BuildService()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
