package workdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/logger"
)

type templateField struct {
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

type templateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Fields      []templateField `json:"fields"`
}

type templateResponse struct {
	ID   string `json:"id"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type attachRequest struct {
	TemplateID string `json:"template_id"`
}

type fieldValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type valuesRequest struct {
	Fields []fieldValue `json:"fields"`
}

// CreateTemplate creates a data template and returns its id.
func (c *Client) CreateTemplate(ctx context.Context, def domain.TemplateDefinition) (string, error) {
	req := templateRequest{Name: def.Name, Description: def.Description}
	for _, f := range def.Fields {
		req.Fields = append(req.Fields, templateField{Label: f.Label, Type: f.Type, Options: f.Options})
	}

	data, err := c.do(ctx, http.MethodPost, "/data/templates", nil, req, DefaultTimeout)
	if err != nil {
		return "", fmt.Errorf("creating template %q: %w", def.Name, err)
	}

	var resp templateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("%w: decoding template response: %v", domain.ErrRemotePermanent, err)
	}
	id := resp.Data.ID
	if id == "" {
		id = resp.ID
	}
	if id == "" {
		return "", fmt.Errorf("%w: template response carried no id", domain.ErrRemotePermanent)
	}
	return id, nil
}

// UpdateMetadata writes values to the file's template. When the file
// does not carry the template yet (404), it is attached and the update
// retried once.
func (c *Client) UpdateMetadata(
	ctx context.Context, fileID, templateID string, values []domain.MetadataValue,
) error {
	if len(values) == 0 {
		return nil
	}
	req := valuesRequest{Fields: make([]fieldValue, 0, len(values))}
	for _, v := range values {
		req.Fields = append(req.Fields, fieldValue{Label: v.Label, Value: v.Value})
	}

	path := "/files/" + url.PathEscape(fileID) + "/data/templates/" + url.PathEscape(templateID)
	_, err := c.do(ctx, http.MethodPatch, path, nil, req, DefaultTimeout)
	if err == nil {
		return nil
	}
	if !IsNotFound(err) {
		return fmt.Errorf("updating metadata of %s: %w", fileID, err)
	}

	logger.Debug("template %s not attached to %s, attaching", templateID, fileID)
	if err := c.attach(ctx, fileID, templateID); err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodPatch, path, nil, req, DefaultTimeout); err != nil {
		return fmt.Errorf("updating metadata of %s: %w", fileID, err)
	}
	return nil
}

func (c *Client) attach(ctx context.Context, fileID, templateID string) error {
	path := "/files/" + url.PathEscape(fileID) + "/data/templates"
	if _, err := c.do(ctx, http.MethodPost, path, nil, attachRequest{TemplateID: templateID}, DefaultTimeout); err != nil {
		return fmt.Errorf("attaching template %s to %s: %w", templateID, fileID, err)
	}
	return nil
}
