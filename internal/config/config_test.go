package config

import (
	"os"
	"path/filepath"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var envVars = []string{
	"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL", "LLM_PROVIDER",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_API_KEY",
	"DB_PATH", "QDRANT_URL", "QDRANT_VECTOR_SIZE",
	"SHEET_BASE_URL", "CHUNK_SIZE", "CHUNK_OVERLAP",
	"SEARCH_K", "CHAT_RETRIEVE_K", "HISTORY_WINDOW", "WORKING_LANGUAGE",
	"TRANSLATOR_ENDPOINT", "TRANSLATOR_KEY", "TRANSLATOR_REGION",
	"CONTENT_SAFETY_ENDPOINT", "CONTENT_SAFETY_KEY", "CONTENT_SAFETY_API_VERSION",
	"REDACTION_THRESHOLD", "API_PORT", "API_KEY", "API_KEY_WRITE",
	"LOG_LEVEL", "LOG_FORMAT",
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with all required fields",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("QDRANT_VECTOR_SIZE", "1536")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMAPIKey == "sk-test" && cfg.QdrantVectorSize == 1536
			},
		},
		{
			name: "missing LLM_API_KEY",
			setupEnv: func(t *testing.T) {
				setEnv("QDRANT_VECTOR_SIZE", "1536")
			},
			wantErr: true,
		},
		{
			name: "missing QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_API_KEY", "sk-test")
			},
			wantErr: true,
		},
		{
			name: "invalid QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("QDRANT_VECTOR_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "negative QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("QDRANT_VECTOR_SIZE", "-1")
			},
			wantErr: true,
		},
		{
			name: "default values for optional fields",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("QDRANT_VECTOR_SIZE", "1536")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMBaseURL == "https://api.openai.com/v1" &&
					cfg.LLMModelName == "gpt-4o-mini" &&
					cfg.LLMProvider == "OpenAI" &&
					cfg.EmbeddingModelName == "text-embedding-3-small" &&
					cfg.QdrantURL == "http://localhost:6333" &&
					cfg.ChunkSize == 256 &&
					cfg.ChunkOverlap == 20 &&
					cfg.SearchK == 5 &&
					cfg.ChatRetrieveK == 10 &&
					cfg.HistoryWindow == 10 &&
					cfg.WorkingLanguage == "en" &&
					cfg.RedactionThreshold == 0.25 &&
					cfg.APIPort == "9000"
			},
		},
		{
			name: "embedding key falls back to llm key",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("QDRANT_VECTOR_SIZE", "1536")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingAPIKey == "sk-test"
			},
		},
		{
			name: "custom optional values",
			setupEnv: func(t *testing.T) {
				tmpDir := t.TempDir()
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("QDRANT_VECTOR_SIZE", "1536")
				setEnv("LLM_BASE_URL", "http://custom:9090/v1")
				setEnv("LLM_MODEL", "custom-model")
				setEnv("CHUNK_SIZE", "512")
				setEnv("HISTORY_WINDOW", "20")
				customDBPath := filepath.Join(tmpDir, "custom", "db.db")
				setEnv("DB_PATH", customDBPath)
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMBaseURL == "http://custom:9090/v1" &&
					cfg.LLMModelName == "custom-model" &&
					cfg.ChunkSize == 512 &&
					cfg.HistoryWindow == 20 &&
					filepath.Base(cfg.DBPath) == "db.db" // Just check filename, path will vary with temp dir
			},
		},
		{
			name: "overlap must be smaller than chunk size",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("QDRANT_VECTOR_SIZE", "1536")
				setEnv("CHUNK_SIZE", "64")
				setEnv("CHUNK_OVERLAP", "64")
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("QDRANT_VECTOR_SIZE", "1536")
				setEnv("LOG_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "invalid redaction threshold",
			setupEnv: func(t *testing.T) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("QDRANT_VECTOR_SIZE", "1536")
				setEnv("REDACTION_THRESHOLD", "1.5")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Change to a temp directory without .env file to avoid loading it
			tmpDir := t.TempDir()
			originalWd, _ := os.Getwd()
			_ = os.Chdir(tmpDir) // Ignore error - test will fail if this doesn't work
			defer func() {
				_ = os.Chdir(originalWd) // Ignore error in cleanup
			}()

			// Clean up env vars before each test
			for _, key := range envVars {
				unsetEnv(key)
			}
			// Restore original values after test
			defer func() {
				for key, value := range originalEnv {
					if value != "" {
						setEnv(key, value)
					} else {
						unsetEnv(key)
					}
				}
			}()

			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed")
			}
		})
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	// Use a temporary directory for testing
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test", "db.db")

	setEnv("LLM_API_KEY", "sk-test")
	setEnv("QDRANT_VECTOR_SIZE", "1536")
	setEnv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Check that directory was created
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}

	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestGetEnv(t *testing.T) {
	originalValue := os.Getenv("TEST_ENV_VAR")
	defer func() {
		if originalValue != "" {
			setEnv("TEST_ENV_VAR", originalValue)
		} else {
			unsetEnv("TEST_ENV_VAR")
		}
	}()

	tests := []struct {
		name         string
		setupEnv     func()
		key          string
		defaultValue string
		want         string
	}{
		{
			name: "env var set",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "set-value")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "set-value",
		},
		{
			name: "env var not set",
			setupEnv: func() {
				unsetEnv("TEST_ENV_VAR")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name: "empty env var uses default",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	originalValue := os.Getenv("TEST_INT_VAR")
	defer func() {
		if originalValue != "" {
			setEnv("TEST_INT_VAR", originalValue)
		} else {
			unsetEnv("TEST_INT_VAR")
		}
	}()

	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "unset uses default", value: "", want: 7},
		{name: "valid integer", value: "42", want: 42},
		{name: "not a number", value: "nope", wantErr: true},
		{name: "zero rejected", value: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				unsetEnv("TEST_INT_VAR")
			} else {
				setEnv("TEST_INT_VAR", tt.value)
			}
			got, err := getEnvInt("TEST_INT_VAR", 7)
			if tt.wantErr {
				if err == nil {
					t.Errorf("getEnvInt() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("getEnvInt() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}
