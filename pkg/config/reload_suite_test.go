package config

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/ajitpratap0/hablo/pkg/errors"
	"github.com/ajitpratap0/hablo/pkg/testutil"
)

// ReloadSuite edits one document on disk across several reloads.
type ReloadSuite struct {
	testutil.IntegrationTestSuite
	path string
	root *Root
}

func TestReloadSuite(t *testing.T) {
	testutil.IntegrationTest(t)
	suite.Run(t, new(ReloadSuite))
}

func (s *ReloadSuite) SetupTest() {
	s.path = s.CreateTempFile("flow.yaml", []byte(fixtureYAML))
	root, err := FromFile(s.path, WithLogger(zap.NewNop()))
	s.Require().NoError(err)
	s.root = root
}

func (s *ReloadSuite) TestOverridesDoNotSurvive() {
	s.Require().True(s.root.Resolver().SetVariable("inputs.name", "Mars"))
	s.Require().NoError(s.root.Reload())

	v, err := s.root.Get("greeting")
	s.Require().NoError(err)
	s.Equal("world", v)
}

func (s *ReloadSuite) TestEditedDefaults() {
	s.CreateTempFile("flow.yaml", []byte(`
inputs:
  name: {type: string, default: Venus}
greeting: ${inputs.name}
`))
	s.Require().NoError(s.root.Reload())

	v, err := s.root.Get("greeting")
	s.Require().NoError(err)
	s.Equal("Venus", v)
	s.False(s.root.PathExists("list"))
	s.Equal(1, s.root.Resolver().Registry().Len())
}

func (s *ReloadSuite) TestTemplateSurvivesSave() {
	s.Require().True(s.root.Resolver().SetVariable("inputs.name", "Mars"))
	s.Require().NoError(s.root.Save(s.path, true))
	s.Require().NoError(s.root.Reload())

	v, err := s.root.Get("again")
	s.Require().NoError(err)
	s.Equal("world", v)
}

func (s *ReloadSuite) TestBrokenEditKeepsTree() {
	s.CreateTempFile("flow.yaml", []byte("inputs: [\n"))
	err := s.root.Reload()
	s.True(errors.IsType(err, errors.ErrorTypeParse))

	v, err := s.root.Get("first_id")
	s.Require().NoError(err)
	s.Equal(7, v)
}
