package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"memorybank/internal/application/commands"
	"memorybank/internal/domain"
)

// ResourceScheme prefixes every document resource URI
const ResourceScheme = "memorybank://"

// ResourceURI returns the resource URI of a document type
func ResourceURI(dt domain.DocumentType) string {
	return ResourceScheme + dt.String()
}

// RegisterResources exposes each catalog document as a markdown resource.
func RegisterResources(s *server.MCPServer, bank commands.Bank) {
	for _, dt := range domain.AllDocumentTypes() {
		resource := mcp.NewResource(ResourceURI(dt), dt.Title(),
			mcp.WithResourceDescription(fmt.Sprintf("The %s document (%s)", dt.Title(), dt.RelativePath())),
			mcp.WithMIMEType("text/markdown"),
		)
		s.AddResource(resource, resourceHandler(bank))
	}
}

func resourceHandler(bank commands.Bank) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := req.Params.URI
		key, ok := strings.CutPrefix(uri, ResourceScheme)
		if !ok {
			return nil, fmt.Errorf("unsupported resource URI: %s", uri)
		}

		rec, err := commands.NewShowDocumentCommand(bank, key).Execute(ctx)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     rec.Raw,
			},
		}, nil
	}
}
