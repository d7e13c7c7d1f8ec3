package mocks

import (
	"io"

	"github.com/johndistasio/ifconfig/conninfo"
	"github.com/stretchr/testify/mock"
)

type Renderer struct {
	mock.Mock
}

func (m *Renderer) Render(w io.Writer, list conninfo.List, acceptLanguage string) error {
	args := m.Called(w, list, acceptLanguage)
	return args.Error(0)
}
