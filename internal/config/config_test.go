package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			User:   "test",
			DBName: "test",
		},
		Gmail: GmailConfig{
			ClientID:     "test",
			ClientSecret: "test",
			RefreshToken: "test",
		},
		Scheduler: SchedulerConfig{
			IntervalMinutes: 5,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)

	invalidConfig := &Config{
		Server: ServerConfig{
			Port: "",
		},
	}

	err = invalidConfig.Validate()
	assert.Error(t, err)
}

func TestConfigValidationRequiresGmailCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Gmail.RefreshToken = ""

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestConfigValidationIMAPCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Gmail.UseIMAP = true

	err := cfg.Validate()
	assert.Error(t, err)

	cfg.Gmail.IMAPUser = "bot@example.com"
	cfg.Gmail.IMAPPassword = "app-password"

	err = cfg.Validate()
	assert.NoError(t, err)
}

func TestConfigValidationSchedulerInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.IntervalMinutes = 0

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	dsn := cfg.GetDSN()
	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, dsn)
}
