// Package imagetools defines the image-editing tool catalog and the
// workflows behind it. Each workflow is a fixed sequence of remote calls:
// failure of one step aborts the rest, and there is no partial-success
// result.
package imagetools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/fal"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/slackclient"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/toolbox"
)

// Tools builds the tool catalog over the two remote clients.
type Tools struct {
	fal   *fal.Client
	slack *slackclient.Client
}

// New creates the catalog builder.
func New(falClient *fal.Client, slackClient *slackclient.Client) *Tools {
	return &Tools{fal: falClient, slack: slackClient}
}

// Toolbox returns the full operation catalog.
func (t *Tools) Toolbox() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(
		t.editImageTool(),
		t.editImageQwenTool(),
		t.editAndPostTool(),
		t.editSlackFileAndPostTool(),
		t.removeBackgroundTool(),
		t.upscaleImageTool(),
	)

	return tb
}

// --- edit_image ---

type editArgs struct {
	ImageURL string   `json:"image_url" jsonschema:"required,description=URL of the image to edit (must be publicly accessible)"`
	Prompt   string   `json:"prompt" jsonschema:"required,description=Description of how to edit the image"`
	Model    string   `json:"model,omitempty" jsonschema:"description=Editing model; unknown values fall back to flux,enum=flux,enum=flux-schnell,enum=flux-pro,default=flux"`
	Strength *float64 `json:"strength,omitempty" jsonschema:"description=How much to change the image; clamped to 0.3-1.0,default=0.8"`
}

func (t *Tools) editImageTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "edit_image",
		Description: "Edit an image with a fal.ai model based on a text prompt. Good for style changes and object addition or modification.",
		InputSchema: schemaFor[editArgs](),
		Handler:     t.handleEditImage,
	}
}

func (t *Tools) handleEditImage(ctx context.Context, args json.RawMessage) (string, error) {
	var in editArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("edit_image: invalid arguments: %w", err)
	}

	if in.ImageURL == "" || in.Prompt == "" {
		return "", fmt.Errorf("edit_image: image_url and prompt are required")
	}

	result, err := t.edit(ctx, in)
	if err != nil {
		return "", err
	}

	return formatEditSummary(result), nil
}

// edit is the shared modify step. It returns the typed result; workflows
// that chain onto it consume the result directly rather than re-parsing
// rendered text.
func (t *Tools) edit(ctx context.Context, in editArgs) (*fal.EditResult, error) {
	return t.fal.EditImage(ctx, fal.EditRequest{
		ImageURL: in.ImageURL,
		Prompt:   in.Prompt,
		Model:    fal.Model(in.Model),
		Strength: in.Strength,
	})
}

// --- edit_image_qwen ---

type qwenEditArgs struct {
	ImageURL string `json:"image_url" jsonschema:"required,description=URL of the image to edit (must be publicly accessible)"`
	Prompt   string `json:"prompt" jsonschema:"required,description=Description of how to edit the image"`
}

func (t *Tools) editImageQwenTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "edit_image_qwen",
		Description: "Edit an image with the Qwen model. Excellent for text editing and precise detailed modifications.",
		InputSchema: schemaFor[qwenEditArgs](),
		Handler:     t.handleEditImageQwen,
	}
}

func (t *Tools) handleEditImageQwen(ctx context.Context, args json.RawMessage) (string, error) {
	var in qwenEditArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("edit_image_qwen: invalid arguments: %w", err)
	}

	if in.ImageURL == "" || in.Prompt == "" {
		return "", fmt.Errorf("edit_image_qwen: image_url and prompt are required")
	}

	result, err := t.fal.EditImageQwen(ctx, in.ImageURL, in.Prompt)
	if err != nil {
		return "", err
	}

	return formatEditSummary(result), nil
}

// --- edit_and_post ---

type editAndPostArgs struct {
	editArgs
	ChannelID string `json:"channel_id,omitempty" jsonschema:"description=Slack channel to post into; defaults to the configured channel"`
	Message   string `json:"message,omitempty" jsonschema:"description=Message text to accompany the image; derived from the prompt when omitted"`
}

func (t *Tools) editAndPostTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "edit_and_post",
		Description: "Edit an image with fal.ai and post the result into a Slack channel.",
		InputSchema: schemaFor[editAndPostArgs](),
		Handler:     t.handleEditAndPost,
	}
}

func (t *Tools) handleEditAndPost(ctx context.Context, args json.RawMessage) (string, error) {
	var in editAndPostArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("edit_and_post: invalid arguments: %w", err)
	}

	if in.ImageURL == "" || in.Prompt == "" {
		return "", fmt.Errorf("edit_and_post: image_url and prompt are required")
	}

	return t.editAndPost(ctx, in)
}

func (t *Tools) editAndPost(ctx context.Context, in editAndPostArgs) (string, error) {
	result, err := t.edit(ctx, in.editArgs)
	if err != nil {
		return "", err
	}

	post, err := t.slack.PostImage(ctx, in.ChannelID, postMessage(in.Message, result), result.URL)
	if err != nil {
		return "", err
	}

	return formatPostedSummary(result, post), nil
}

// postMessage derives the Slack message when the caller supplied none,
// embedding the original prompt and the model used.
func postMessage(explicit string, result *fal.EditResult) string {
	if explicit != "" {
		return explicit
	}

	return fmt.Sprintf("Edited with %s: %q", result.ModelLabel, result.Prompt)
}

// --- edit_slack_file_and_post ---

type fileEditArgs struct {
	FileID    string   `json:"file_id,omitempty" jsonschema:"description=Slack file ID to edit; mutually exclusive with file_url"`
	FileURL   string   `json:"file_url,omitempty" jsonschema:"description=Private Slack file URL to edit; mutually exclusive with file_id"`
	Prompt    string   `json:"prompt" jsonschema:"required,description=Description of how to edit the image"`
	Model     string   `json:"model,omitempty" jsonschema:"description=Editing model; unknown values fall back to flux,enum=flux,enum=flux-schnell,enum=flux-pro,default=flux"`
	Strength  *float64 `json:"strength,omitempty" jsonschema:"description=How much to change the image; clamped to 0.3-1.0,default=0.8"`
	ChannelID string   `json:"channel_id,omitempty" jsonschema:"description=Slack channel to post into; defaults to the configured channel"`
	Message   string   `json:"message,omitempty" jsonschema:"description=Message text to accompany the image; derived from the prompt when omitted"`
}

func (t *Tools) editSlackFileAndPostTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "edit_slack_file_and_post",
		Description: "Resolve a Slack file, edit it with fal.ai, and post the result back into a Slack channel.",
		InputSchema: schemaFor[fileEditArgs](),
		Handler:     t.handleEditSlackFileAndPost,
	}
}

func (t *Tools) handleEditSlackFileAndPost(ctx context.Context, args json.RawMessage) (string, error) {
	var in fileEditArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("edit_slack_file_and_post: invalid arguments: %w", err)
	}

	if in.Prompt == "" {
		return "", fmt.Errorf("edit_slack_file_and_post: prompt is required")
	}

	imageRef, err := t.slack.ResolveFile(ctx, in.FileID, in.FileURL)
	if err != nil {
		return "", err
	}

	return t.editAndPost(ctx, editAndPostArgs{
		editArgs: editArgs{
			ImageURL: imageRef,
			Prompt:   in.Prompt,
			Model:    in.Model,
			Strength: in.Strength,
		},
		ChannelID: in.ChannelID,
		Message:   in.Message,
	})
}

// --- remove_background ---

type removeBackgroundArgs struct {
	ImageURL string `json:"image_url" jsonschema:"required,description=URL of the image to process (must be publicly accessible)"`
}

func (t *Tools) removeBackgroundTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "remove_background",
		Description: "Remove the background from an image, making it transparent.",
		InputSchema: schemaFor[removeBackgroundArgs](),
		Handler:     t.handleRemoveBackground,
	}
}

func (t *Tools) handleRemoveBackground(ctx context.Context, args json.RawMessage) (string, error) {
	var in removeBackgroundArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("remove_background: invalid arguments: %w", err)
	}

	if in.ImageURL == "" {
		return "", fmt.Errorf("remove_background: image_url is required")
	}

	result, err := t.fal.RemoveBackground(ctx, in.ImageURL)
	if err != nil {
		return "", err
	}

	return formatEditSummary(result), nil
}

// --- upscale_image ---

type upscaleArgs struct {
	ImageURL string `json:"image_url" jsonschema:"required,description=URL of the image to upscale (must be publicly accessible)"`
	Scale    int    `json:"scale,omitempty" jsonschema:"description=Scale factor,enum=2,enum=4,enum=8,default=2"`
}

func (t *Tools) upscaleImageTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "upscale_image",
		Description: "Upscale an image to a higher resolution.",
		InputSchema: schemaFor[upscaleArgs](),
		Handler:     t.handleUpscaleImage,
	}
}

func (t *Tools) handleUpscaleImage(ctx context.Context, args json.RawMessage) (string, error) {
	var in upscaleArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("upscale_image: invalid arguments: %w", err)
	}

	if in.ImageURL == "" {
		return "", fmt.Errorf("upscale_image: image_url is required")
	}

	result, err := t.fal.Upscale(ctx, in.ImageURL, in.Scale)
	if err != nil {
		return "", err
	}

	return formatEditSummary(result), nil
}
