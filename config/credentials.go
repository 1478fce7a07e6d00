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

import "github.com/wtsi-hgi/enrich/types"

// Credentials holds the parts of a Google service account key file (as
// downloaded from https://console.developers.google.com) needed to sign in.
type Credentials struct {
	Type         string `mapstructure:"type"`
	ProjectID    string `mapstructure:"project_id"`
	PrivateKeyID string `mapstructure:"private_key_id"`
	PrivateKey   string `mapstructure:"private_key"`
	ClientEmail  string `mapstructure:"client_email"`
	TokenURI     string `mapstructure:"token_uri"`
}

// LoadCredentials reads a service account key file. Returns a
// *types.ConfigError if the file can't be parsed or lacks the email, private
// key or token URI.
func LoadCredentials(path string) (*Credentials, error) {
	var c Credentials

	if err := unmarshalFile(path, &c); err != nil {
		return nil, err
	}

	for _, required := range [][2]string{
		{"client_email", c.ClientEmail},
		{"private_key", c.PrivateKey},
		{"token_uri", c.TokenURI},
	} {
		if required[1] == "" {
			return nil, types.NewConfigError(path, required[0], nil, types.ErrMissingKey)
		}
	}

	return &c, nil
}

// Credentials loads the service account key file named by
// ENRICH_CREDENTIALS_FILE. Returns ErrMissingEnvs unless RequireSheets() is
// satisfied.
func (c *Config) Credentials() (*Credentials, error) {
	if err := c.RequireSheets(); err != nil {
		return nil, err
	}

	return LoadCredentials(c.CredentialsPath)
}
