package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hookline/hookline/cli/pkg/output"
	"github.com/hookline/hookline/common/client"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:     "sources",
	Aliases: []string{"source", "src"},
	Short:   "Source management",
	Long:    "Create ingestion sources in the active project",
}

var sourcesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a source",
	Long: `Create a source in the active project.

Build it from flags, or pass a JSON document with --file (use - for stdin).
The document is sent as-is.`,
	Example: `  hline sources create --name github --verifier hmac --hmac-secret s3cret --hmac-header X-Hub-Signature-256
  hline sources create --file source.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := sourceFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newAPI(cmd)
		if err != nil {
			return err
		}

		env, err := a.sources.CreateSource(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("failed to create source: %w", err)
		}

		return printEnvelope(cmd, env, func(data interface{}) {
			table := output.NewTable([]string{"ID", "Name", "Type", "Verifier", "URL"})
			table.AddRow([]string{
				getString(data, "uid", "id"),
				getString(data, "name"),
				getString(data, "type"),
				getString(data, "verifier.type"),
				getString(data, "url"),
			})
			table.Render()
		})
	},
}

func sourceFromFlags(cmd *cobra.Command) (client.Source, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		return readSourceFile(cmd, file)
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		return nil, errors.New("--name or --file is required")
	}

	spec := client.SourceSpec{Name: name}
	spec.Type, _ = cmd.Flags().GetString("type")
	spec.Provider, _ = cmd.Flags().GetString("provider")
	spec.IsDisabled, _ = cmd.Flags().GetBool("disabled")

	v := &spec.Verifier
	v.Type, _ = cmd.Flags().GetString("verifier")
	v.Header, _ = cmd.Flags().GetString("hmac-header")
	v.Hash, _ = cmd.Flags().GetString("hmac-hash")
	v.Secret, _ = cmd.Flags().GetString("hmac-secret")
	v.Encoding, _ = cmd.Flags().GetString("hmac-encoding")
	v.Username, _ = cmd.Flags().GetString("username")
	v.Password, _ = cmd.Flags().GetString("password")
	v.APIKeyHeader, _ = cmd.Flags().GetString("api-key-header")
	v.APIKey, _ = cmd.Flags().GetString("api-key-value")

	switch v.Type {
	case client.VerifierNoop:
	case client.VerifierHMAC:
		if v.Secret == "" || v.Header == "" {
			return nil, errors.New("hmac verifier needs --hmac-secret and --hmac-header")
		}
	case client.VerifierBasicAuth:
		if v.Username == "" || v.Password == "" {
			return nil, errors.New("basic_auth verifier needs --username and --password")
		}
	case client.VerifierAPIKey:
		if v.APIKeyHeader == "" || v.APIKey == "" {
			return nil, errors.New("api_key verifier needs --api-key-header and --api-key-value")
		}
	default:
		return nil, fmt.Errorf("unknown verifier %q", v.Type)
	}

	return spec.Source(), nil
}

func readSourceFile(cmd *cobra.Command, path string) (client.Source, error) {
	var source client.Source
	if err := readJSONFile(cmd, path, &source); err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	return source, nil
}

// readJSONFile decodes the document at path, or stdin when path is "-".
func readJSONFile(cmd *cobra.Command, path string, v interface{}) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	return json.NewDecoder(r).Decode(v)
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesCreateCmd)

	f := sourcesCreateCmd.Flags()
	f.StringP("file", "f", "", "JSON source document (- for stdin)")
	f.String("name", "", "source name")
	f.String("type", client.SourceTypeHTTP, "source type: http, rest_api, pub_sub")
	f.String("provider", "", "provider preset, e.g. github")
	f.Bool("disabled", false, "create the source disabled")
	f.String("verifier", client.VerifierNoop, "verifier: noop, hmac, basic_auth, api_key")
	f.String("hmac-header", "", "header carrying the signature")
	f.String("hmac-hash", "SHA256", "hmac hash function")
	f.String("hmac-secret", "", "hmac secret")
	f.String("hmac-encoding", "hex", "signature encoding: hex, base64")
	f.String("username", "", "basic auth username")
	f.String("password", "", "basic auth password")
	f.String("api-key-header", "", "header carrying the API key")
	f.String("api-key-value", "", "expected API key")
	sourcesCreateCmd.MarkFlagsMutuallyExclusive("file", "name")
}
