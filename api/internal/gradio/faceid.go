package gradio

import (
	"context"
	"encoding/json"
	"fmt"
)

// FaceIDParams: остальные входы /generate_image у Ip-Adapter-FaceID.
type FaceIDParams struct {
	APIName               string
	PreserveFaceStructure bool
	FaceStrength          float64
	LikenessStrength      float64
	NFAANegativePrompt    string
}

func DefaultFaceIDParams() FaceIDParams {
	return FaceIDParams{
		APIName:               "/generate_image",
		PreserveFaceStructure: true,
		FaceStrength:          1.3,
		LikenessStrength:      1,
		NFAANegativePrompt:    "naked, bikini, skimpy, scanty, bare skin, lingerie, swimsuit, exposed, see-through",
	}
}

type FaceIDInput struct {
	ImagePath      string
	Prompt         string
	NegativePrompt string
}

// FaceID drives a face-conditioned generation app.
type FaceID struct {
	c      *Client
	params FaceIDParams
}

func NewFaceID(c *Client, p FaceIDParams) *FaceID {
	if p.APIName == "" {
		p.APIName = DefaultFaceIDParams().APIName
	}
	return &FaceID{c: c, params: p}
}

func (f *FaceID) Generate(ctx context.Context, in FaceIDInput) ([]byte, error) {
	img, err := f.c.Upload(ctx, in.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("upload base image: %w", err)
	}

	out, err := f.c.Predict(ctx, f.params.APIName, []any{
		[]FileData{img},
		in.Prompt,
		in.NegativePrompt,
		f.params.PreserveFaceStructure,
		f.params.FaceStrength,
		f.params.LikenessStrength,
		f.params.NFAANegativePrompt,
	})
	if err != nil {
		return nil, err
	}

	ref, err := firstGalleryImage(out)
	if err != nil {
		return nil, err
	}
	return f.c.Download(ctx, ref)
}

// firstGalleryImage: data[0]: галерея [{image, caption}, ...]; нужен image первого элемента.
func firstGalleryImage(out []json.RawMessage) (FileData, error) {
	if len(out) == 0 {
		return FileData{}, fmt.Errorf("%w: empty output", ErrInvalidResponse)
	}
	var gallery []struct {
		Image json.RawMessage `json:"image"`
	}
	if err := json.Unmarshal(out[0], &gallery); err != nil {
		return FileData{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(gallery) == 0 || len(gallery[0].Image) == 0 || string(gallery[0].Image) == "null" {
		return FileData{}, fmt.Errorf("%w: no image", ErrInvalidResponse)
	}

	raw := gallery[0].Image
	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		if path == "" {
			return FileData{}, fmt.Errorf("%w: no image", ErrInvalidResponse)
		}
		return FileData{Path: path}, nil
	}
	var fd FileData
	if err := json.Unmarshal(raw, &fd); err != nil {
		return FileData{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if fd.Path == "" && fd.URL == "" {
		return FileData{}, fmt.Errorf("%w: no image", ErrInvalidResponse)
	}
	return fd, nil
}
