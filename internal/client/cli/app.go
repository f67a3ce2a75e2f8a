package cli

import (
	"bufio"
	"io"

	"github.com/dmitrijs2005/actionkeeper/internal/client/keyvault"
	"github.com/dmitrijs2005/actionkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/actionkeeper/internal/client/services"
	"github.com/dmitrijs2005/actionkeeper/internal/logging"
)

type App struct {
	capture services.CaptureService
	vault   keyvault.KeyVault
	meta    metadata.Repository
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(capture services.CaptureService, vault keyvault.KeyVault, meta metadata.Repository, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		capture: capture,
		vault:   vault,
		meta:    meta,
		log:     log,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}
