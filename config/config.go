/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package config

import (
	"net"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	EnvVarCreds     = "ENRICH_CREDENTIALS_FILE"
	EnvVarSheet     = "ENRICH_SPREADSHEET_ID"
	EnvVarUser      = "ENRICH_SQL_USER"
	EnvVarPass      = "ENRICH_SQL_PASS"
	EnvVarHost      = "ENRICH_SQL_HOST"
	EnvVarPort      = "ENRICH_SQL_PORT"
	EnvVarDBName    = "ENRICH_SQL_DB"
	EnvVarOutputDir = "ENRICH_OUTPUT_DIR"

	sqlNetwork = "tcp"
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrMissingEnvs = Error("missing required environment variables")

// Config holds the settings that come from the environment: where to export
// scores to, where to generate run files from, and where to write output.
type Config struct {
	CredentialsPath string
	SheetID         string
	User            string
	Password        string
	Host            string
	Port            string
	DBName          string
	OutputDir       string
}

// FromEnv returns a new Config with properies populated from environment
// variables ENRICH_*, where * is amongst: CREDENTIALS_FILE, SPREADSHEET_ID,
// SQL_USER, SQL_PASS, SQL_HOST, SQL_PORT, SQL_DB and OUTPUT_DIR.
//
// If these environment variables are defined in a file called .env (and not
// previously set in an environment variable), they will be automatically
// loaded.
//
// Optionally supply a directory to look for the .env file in.
//
// None of the variables are required here; use RequireDB() and
// RequireSheets() to check for the ones a particular task needs.
func FromEnv(dir ...string) *Config {
	var parentDir string
	if len(dir) == 1 {
		parentDir = dir[0] + string(os.PathSeparator)
	}

	godotenv.Load(parentDir + ".env") //nolint:errcheck

	return &Config{
		CredentialsPath: os.Getenv(EnvVarCreds),
		SheetID:         os.Getenv(EnvVarSheet),
		User:            os.Getenv(EnvVarUser),
		Password:        os.Getenv(EnvVarPass),
		Host:            os.Getenv(EnvVarHost),
		Port:            os.Getenv(EnvVarPort),
		DBName:          os.Getenv(EnvVarDBName),
		OutputDir:       os.Getenv(EnvVarOutputDir),
	}
}

// RequireDB returns ErrMissingEnvs unless all the SQL_* variables were set.
func (c *Config) RequireDB() error {
	if c.User == "" || c.Password == "" || c.Host == "" || c.Port == "" || c.DBName == "" {
		return ErrMissingEnvs
	}

	return nil
}

// RequireSheets returns ErrMissingEnvs unless the CREDENTIALS_FILE and
// SPREADSHEET_ID variables were set.
func (c *Config) RequireSheets() error {
	if c.CredentialsPath == "" || c.SheetID == "" {
		return ErrMissingEnvs
	}

	return nil
}

// FormatDSN returns a MySQL data source name for the SQL_* settings.
func (c *Config) FormatDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = sqlNetwork
	cfg.Addr = net.JoinHostPort(c.Host, c.Port)
	cfg.DBName = c.DBName
	cfg.ParseTime = true

	return cfg.FormatDSN()
}
