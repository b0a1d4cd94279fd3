package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/studydesk/internal/llm"
	"github.com/joho/godotenv"
)

// DefaultDatasetRepo is the Hugging Face dataset holding the question paper
// and answer key.
const DefaultDatasetRepo = "A2coder75/icse_board_paper_2024_physics"

// Config is the process configuration. It is loaded once in main and handed
// to each component explicitly.
type Config struct {
	Addr        string
	DBPath      string // SQLite path or postgres:// URL
	LogMode     string // "dev" or "prod"
	CORSOrigins []string

	LLM          llm.LLMConfig
	QuestionBank QuestionBankConfig
}

// QuestionBankConfig locates the remote question dataset.
type QuestionBankConfig struct {
	Endpoint      string
	Repo          string
	Token         string
	QuestionsFile string
	AnswerKeyFile string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := Config{
		Addr:        ":8000",
		LogMode:     "dev",
		CORSOrigins: []string{"*"},
		LLM:         llm.LoadConfig(),
		QuestionBank: QuestionBankConfig{
			Endpoint:      "https://huggingface.co",
			Repo:          DefaultDatasetRepo,
			QuestionsFile: "IcseXPhysicsPaper2024.json",
			AnswerKeyFile: "answer_key.json",
		},
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("STUDYDESK_ADDR"); v != "" {
		cfg.Addr = v
	}

	cfg.DBPath = os.Getenv("STUDYDESK_DB")
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".studydesk", "studydesk.db")
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("STUDYDESK_LOG_MODE"))); v != "" {
		if v != "dev" && v != "prod" {
			return Config{}, fmt.Errorf("STUDYDESK_LOG_MODE must be dev or prod, got %q", v)
		}
		cfg.LogMode = v
	}
	if v := os.Getenv("STUDYDESK_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	qb := &cfg.QuestionBank
	qb.Token = strings.TrimSpace(os.Getenv("HF_TOKEN"))
	if v := os.Getenv("STUDYDESK_HF_ENDPOINT"); v != "" {
		qb.Endpoint = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("STUDYDESK_DATASET_REPO"); v != "" {
		qb.Repo = v
	}
	if v := os.Getenv("STUDYDESK_QUESTIONS_FILE"); v != "" {
		qb.QuestionsFile = v
	}
	if v := os.Getenv("STUDYDESK_ANSWER_KEY_FILE"); v != "" {
		qb.AnswerKeyFile = v
	}

	return cfg, nil
}

// IsPostgres reports whether DBPath names a Postgres database.
func (c Config) IsPostgres() bool {
	return strings.HasPrefix(c.DBPath, "postgres://") || strings.HasPrefix(c.DBPath, "postgresql://")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
