package commands

import (
	"context"
	"encoding/pem"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/remote"
	"tasksync/internal/service"
)

func init() {
	Register(&CertCmd{})
}

// CertCmd implements the cert command.
// The PEM output can be saved and referenced as ca_file.
type CertCmd struct{}

func (c *CertCmd) Name() string       { return "cert" }
func (c *CertCmd) Aliases() []string  { return nil }
func (c *CertCmd) Synopsis() string   { return "Print the certificate presented by a server" }
func (c *CertCmd) Usage() string      { return "tasksync cert [common flags] <url>" }
func (c *CertCmd) NeedsService() bool { return false }
func (c *CertCmd) NeedsAuth() bool    { return false }

func (c *CertCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CertCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: server url required")
		return exitcode.UserError
	}

	cert, err := remote.FetchCertificate(ctx, args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	if err := pem.Encode(out, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
