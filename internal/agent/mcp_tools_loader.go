// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/logging"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// mcpServerSpec is one entry of the mcpServers config file. Command-based
// entries run a local process over stdio; URL-based entries connect over
// streamable HTTP (or SSE when transport is "sse").
type mcpServerSpec struct {
	Command   string   `json:"command,omitempty"`
	Args      []string `json:"args,omitempty"`
	URL       string   `json:"url,omitempty"`
	Transport string   `json:"transport,omitempty"`
}

type mcpConfig struct {
	MCP map[string]mcpServerSpec `json:"mcpServers"`
}

// mcpInvoker routes tool calls to one MCP server session.
type mcpInvoker struct {
	session *mcp.ClientSession
}

func (i *mcpInvoker) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	res, err := i.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", err
	}
	// Flatten the tool response into a single string for the model.
	out, err := json.Marshal(res.Content)
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}
	return string(out), nil
}

// LoadMCPTools reads the MCP config file, connects a client session per
// configured server, and aggregates the advertised tools. It returns the
// combined tool definitions, the tool-name-to-invoker map used by the
// router, and a close function releasing all sessions.
//
// A server that fails to connect or list tools is logged and skipped so a
// single unavailable server does not take the agent down.
func LoadMCPTools(ctx context.Context, configPath string, appName, appVersion string, logger *logging.Logger) ([]model.ToolDefinition, map[string]ToolInvoker, func(), error) {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	var cfg mcpConfig
	if err = json.Unmarshal(raw, &cfg); err != nil {
		return nil, nil, nil, err
	}

	var tools []model.ToolDefinition
	invokers := map[string]ToolInvoker{}
	var sessions []*mcp.ClientSession

	for name, spec := range cfg.MCP {
		var tp mcp.Transport
		switch {
		case spec.Command != "":
			tp = &mcp.CommandTransport{Command: exec.Command(spec.Command, spec.Args...)}
		case spec.URL != "" && spec.Transport == "sse":
			tp = &mcp.SSEClientTransport{Endpoint: spec.URL}
		case spec.URL != "":
			tp = &mcp.StreamableClientTransport{Endpoint: spec.URL}
		default:
			continue
		}

		cli := mcp.NewClient(&mcp.Implementation{Name: appName, Version: appVersion}, nil)
		session, err := cli.Connect(ctx, tp, nil)
		if err != nil {
			logger.Warnf("Failed to connect to MCP server %s: %v", name, err)
			continue
		}

		resp, err := session.ListTools(ctx, nil)
		if err != nil {
			logger.Warnf("Failed to list tools for MCP server %s: %v", name, err)
			_ = session.Close()
			continue
		}
		sessions = append(sessions, session)
		invoker := &mcpInvoker{session: session}

		for _, tl := range resp.Tools {
			params, err := toolSchemaAsMap(tl.InputSchema)
			if err != nil {
				logger.Warnf("Skipping tool %s: %v", tl.Name, err)
				continue
			}
			tools = append(tools, model.ToolDefinition{
				Name:        tl.Name,
				Description: tl.Description,
				Parameters:  params,
			})
			invokers[tl.Name] = invoker
			logger.Debugf("Registered tool %s from MCP server %s", tl.Name, name)
		}
		logger.Infof("Connected to MCP server %s (%d tools)", name, len(resp.Tools))
	}

	closeAll := func() {
		for _, s := range sessions {
			_ = s.Close()
		}
	}
	return tools, invokers, closeAll, nil
}

// toolSchemaAsMap converts a tool's input schema to the generic map the chat
// SDKs expect, patching empty object schemas which the OpenAI API rejects.
func toolSchemaAsMap(schema any) (map[string]interface{}, error) {
	raw := []byte(`{"type":"object"}`)
	if schema != nil {
		b, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("marshal input schema: %w", err)
		}
		raw = b
	}
	var params map[string]interface{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("unmarshal input schema: %w", err)
	}

	// WORKAROUND: the OpenAI API rejects object schemas without properties,
	// so give no-parameter tools a dummy one.
	if params["type"] == "object" {
		props, _ := params["properties"].(map[string]interface{})
		if len(props) == 0 {
			params["properties"] = map[string]interface{}{
				"random_string": map[string]interface{}{
					"type":        "string",
					"description": "Dummy parameter for no-parameter tools",
				},
			}
			params["required"] = []string{"random_string"}
		}
	}
	return params, nil
}
