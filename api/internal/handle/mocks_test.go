package handle

import (
	"context"

	"persona-selfie/api/internal/selfie"
)

type mockGenerator struct {
	available bool
	reqs      []selfie.Request
	generate  func(req selfie.Request) (*selfie.Result, error)
}

func (m *mockGenerator) Available() bool { return m.available }

func (m *mockGenerator) Generate(ctx context.Context, req selfie.Request) (*selfie.Result, error) {
	m.reqs = append(m.reqs, req)
	return m.generate(req)
}
