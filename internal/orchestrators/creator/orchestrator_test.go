package creator_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sagaforge/saga-api/internal/clients/external"
	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/orchestrators/creator"
)

type CreatorOrchestratorSuite struct {
	suite.Suite
	dataDir string
	saves   *external.SaveStore
	service creator.Service
	ctx     context.Context
}

func TestCreatorOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(CreatorOrchestratorSuite))
}

func (s *CreatorOrchestratorSuite) SetupTest() {
	s.dataDir = s.T().TempDir()
	s.ctx = context.Background()

	s.writeFile("Schools_of_Power.json", `{"schools": {"Pyromancy": {"theme": "fire"}}}`)
	s.writeFile("Tactical_Triads.json", `{"triads": {"Vanguard": ["Might", "Vitality", "Endurance"]}}`)
	s.writeFile("Evolution_Matrix.json", `{"slots": {"eyes": ["Hawk", "Serpent"]}}`)
	s.writeFile("Evolution_Kingdoms.json", `{"Avian": "Creatures of the open sky."}`)
	s.writeFile("Backstory_Scenarios.json", `{"orphan": "Raised by the road."}`)
	s.writeFile("Item_Builder.json", `{"item_system_v1": {"categories": {"weapon": {"slots": ["hand"]}}}}`)

	defs, err := definitions.New(&definitions.Config{DataDir: s.dataDir})
	s.Require().NoError(err)
	s.Require().NoError(defs.LoadAll(s.ctx))

	saves, err := external.NewSaveStore(&external.SaveStoreConfig{Dir: s.T().TempDir()})
	s.Require().NoError(err)
	s.saves = saves

	svc, err := creator.NewOrchestrator(&creator.Config{
		Definitions: defs,
		Saves:       saves,
		DataDir:     s.dataDir,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *CreatorOrchestratorSuite) writeFile(name, content string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dataDir, name), []byte(content), 0o644))
}

func (s *CreatorOrchestratorSuite) TestDataBundlesWizardSections() {
	out, err := s.service.Data(s.ctx, &creator.DataInput{})
	s.Require().NoError(err)

	var schools map[string]map[string]string
	s.Require().NoError(json.Unmarshal(out.Schools, &schools))
	s.Equal("fire", schools["Pyromancy"]["theme"])

	var triads map[string][]string
	s.Require().NoError(json.Unmarshal(out.Triads, &triads))
	s.Equal([]string{"Might", "Vitality", "Endurance"}, triads["Vanguard"])

	var slots map[string][]string
	s.Require().NoError(json.Unmarshal(out.EvolutionSlots, &slots))
	s.Contains(slots, "eyes")

	var flavor map[string]string
	s.Require().NoError(json.Unmarshal(out.EvolutionFlavor, &flavor))
	s.Equal("Creatures of the open sky.", flavor["Avian"])

	var backstories map[string]string
	s.Require().NoError(json.Unmarshal(out.Backstories, &backstories))
	s.Contains(backstories, "orphan")

	var categories map[string]map[string][]string
	s.Require().NoError(json.Unmarshal(out.ItemCategories, &categories))
	s.Equal([]string{"hand"}, categories["weapon"]["slots"])
}

func (s *CreatorOrchestratorSuite) TestDataToleratesMissingFiles() {
	s.Require().NoError(os.Remove(filepath.Join(s.dataDir, "Schools_of_Power.json")))
	s.Require().NoError(os.Remove(filepath.Join(s.dataDir, "Item_Builder.json")))

	out, err := s.service.Data(s.ctx, &creator.DataInput{})
	s.Require().NoError(err)
	s.Nil(out.Schools)
	s.Nil(out.ItemCategories)
}

func (s *CreatorOrchestratorSuite) TestSaveGrantsStarterKit() {
	out, err := s.service.Save(s.ctx, &creator.SaveInput{
		Record: &ecs.CharacterRecord{
			Name:    "Mira Stoneveil",
			Species: "Dwarf",
			School:  "Pyromancy",
			Triads:  []string{"Vanguard"},
			Stats: map[string]int{
				entities.AttrMight:    12,
				entities.AttrVitality: 14,
			},
		},
	})
	s.Require().NoError(err)
	s.Equal("Mira Stoneveil generated successfully.", out.Message)
	s.Equal("Mira_Stoneveil.json", out.FileName)

	record, err := s.saves.Load("Mira Stoneveil")
	s.Require().NoError(err)
	s.Equal([]string{"Traveler's Cloak", "Waterskin", "Rations"}, record.Inventory)
	s.Equal(50, record.Gold)
	s.Equal([]string{"Vanguard"}, record.Triads)
}

func (s *CreatorOrchestratorSuite) TestSaveRequiresNameAndSpecies() {
	_, err := s.service.Save(s.ctx, &creator.SaveInput{
		Record: &ecs.CharacterRecord{Species: "Dwarf"},
	})
	s.Require().Error(err)

	_, err = s.service.Save(s.ctx, &creator.SaveInput{
		Record: &ecs.CharacterRecord{Name: "Mira"},
	})
	s.Require().Error(err)
}

func (s *CreatorOrchestratorSuite) TestSavesListsRoster() {
	_, err := s.service.Save(s.ctx, &creator.SaveInput{
		Record: &ecs.CharacterRecord{Name: "Mira", Species: "Dwarf"},
	})
	s.Require().NoError(err)

	out, err := s.service.Saves(s.ctx, &creator.SavesInput{})
	s.Require().NoError(err)
	s.Equal([]string{"Mira"}, out.Names)
}
