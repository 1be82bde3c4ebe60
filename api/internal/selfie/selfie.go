package selfie

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"persona-selfie/api/internal/gradio"
	"persona-selfie/api/internal/persona"
	"persona-selfie/api/internal/scene"
	"persona-selfie/api/internal/storage"
	"persona-selfie/api/internal/store"

	"go.uber.org/zap"
)

// Backend renders a face-conditioned image. *gradio.FaceID implements it.
type Backend interface {
	Generate(ctx context.Context, in gradio.FaceIDInput) ([]byte, error)
}

// Ledger records successful generations. *store.GenerationRepo implements it.
type Ledger interface {
	Insert(ctx context.Context, rec store.Record) error
}

// Publication: то, что уходит во внешний канал после успешной генерации.
type Publication struct {
	BotID   string
	Name    string
	Email   string
	Image   []byte
	Context scene.Context
}

type Publisher interface {
	Publish(ctx context.Context, p Publication) error
}

type Request struct {
	BotID                string
	Message              string
	Email                string
	PreviousConversation string
	Username             string
}

type Result struct {
	BotID   string
	Path    string // относительный URL картинки
	Base64  string
	Context scene.Context
}

type Deps struct {
	Registry  *persona.Registry
	Photos    *persona.Photos
	Extractor *scene.Extractor
	Backend   Backend // nil: сервис генерации недоступен
	Store     *storage.Store
	Ledger    Ledger
	Publisher Publisher
	Log       *zap.Logger
	Timeout   time.Duration
}

type Service struct {
	reg     *persona.Registry
	photos  *persona.Photos
	ext     *scene.Extractor
	backend Backend
	store   *storage.Store
	ledger  Ledger
	pub     Publisher
	log     *zap.Logger
	timeout time.Duration
}

func New(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		reg:     d.Registry,
		photos:  d.Photos,
		ext:     d.Extractor,
		store:   d.Store,
		ledger:  d.Ledger,
		pub:     d.Publisher,
		log:     log,
		timeout: d.Timeout,
	}
	// typed nil pointer в интерфейсе не должен выглядеть как живой backend
	if f, ok := d.Backend.(*gradio.FaceID); !ok || f != nil {
		s.backend = d.Backend
	}
	return s
}

// Available reports whether a generation backend is configured.
func (s *Service) Available() bool { return s.backend != nil }

func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if s.backend == nil {
		return nil, errUnavailable
	}

	p, err := s.reg.Lookup(req.BotID)
	if err != nil {
		return nil, notFound(fmt.Sprintf("Bot with id '%s' is not a valid bot.", req.BotID), err)
	}
	base, err := s.photos.Find(p.ID)
	if err != nil {
		if !errors.Is(err, persona.ErrBaseImageMissing) {
			return nil, internal(err)
		}
		return nil, notFound(fmt.Sprintf(
			"Base image for bot '%s' not found in the '%s' folder. "+
				"Please ensure the image file exists and has a matching name (e.g., %s.jpeg).",
			p.ID, s.photos.Dir, p.ID), err)
	}

	reaction := s.ext.Reaction(ctx, p.Name, scene.Message{
		Text:                 req.Message,
		Username:             req.Username,
		PreviousConversation: req.PreviousConversation,
	})
	sc := s.ext.Scene(ctx, reaction)

	log := s.log.With(zap.String("bot_id", p.ID))
	prompt := BuildPrompt(p.Name, sc)
	log.Info("generating image", zap.String("base_image", base), zap.String("prompt", prompt))

	img, err := s.render(ctx, gradio.FaceIDInput{ImagePath: base, Prompt: prompt, NegativePrompt: NegativePrompt})
	if err != nil {
		log.Error("face id generation failed", zap.Error(err))
		return nil, internal(err)
	}

	art, err := s.store.Save(img)
	if err != nil {
		log.Error("save image failed", zap.Error(err))
		return nil, internal(err)
	}
	log.Info("image saved", zap.String("file", art.File))

	res := &Result{
		BotID:   p.ID,
		Path:    art.Path,
		Base64:  base64.StdEncoding.EncodeToString(img),
		Context: sc,
	}
	s.afterSave(ctx, p, req, res, img)
	return res, nil
}

// render runs to completion or error even if the caller goes away; only the
// generation timeout bounds it.
func (s *Service) render(ctx context.Context, in gradio.FaceIDInput) ([]byte, error) {
	ctx = context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	img, err := s.backend.Generate(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("%w: empty image", gradio.ErrInvalidResponse)
	}
	return img, nil
}

// afterSave: журнал и публикация не влияют на ответ клиенту.
func (s *Service) afterSave(ctx context.Context, p persona.Persona, req Request, res *Result, img []byte) {
	if s.ledger != nil {
		err := s.ledger.Insert(ctx, store.Record{
			BotID:     p.ID,
			Email:     req.Email,
			Message:   req.Message,
			ImagePath: res.Path,
			Context:   res.Context,
		})
		if err != nil {
			s.log.Warn("ledger insert failed", zap.String("bot_id", p.ID), zap.Error(err))
		}
	}
	if s.pub != nil {
		err := s.pub.Publish(ctx, Publication{
			BotID:   p.ID,
			Name:    p.Name,
			Email:   req.Email,
			Image:   img,
			Context: res.Context,
		})
		if err != nil {
			s.log.Warn("publish failed", zap.String("bot_id", p.ID), zap.Error(err))
		}
	}
}
