package schema

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wildeye/camtrap/internal/catalog"
	"github.com/wildeye/camtrap/internal/model"
)

// Seed mirrors the YAML shape of a project seed file.
type Seed struct {
	ID            string       `yaml:"_id"`
	Name          string       `yaml:"name"`
	Timezone      string       `yaml:"timezone"`
	CameraConfigs []SeedCamera `yaml:"cameraConfigs"`
	Views         []SeedView   `yaml:"views"`
}

// SeedCamera is one camera config in a seed file. The default
// deployment is implicit; listing dated windows is enough.
type SeedCamera struct {
	ID          string           `yaml:"_id"`
	Deployments []SeedDeployment `yaml:"deployments"`
}

// SeedDeployment is one dated window. StartDate is RFC 3339.
type SeedDeployment struct {
	ID        string `yaml:"_id"`
	Name      string `yaml:"name"`
	Timezone  string `yaml:"timezone"`
	StartDate string `yaml:"startDate"`
	Editable  *bool  `yaml:"editable"`
}

// SeedView is one saved view in a seed file.
type SeedView struct {
	ID       string   `yaml:"_id"`
	Name     string   `yaml:"name"`
	Editable *bool    `yaml:"editable"`
	Filters  struct {
		Cameras     []string `yaml:"cameras"`
		Deployments []string `yaml:"deployments"`
		Labels      []string `yaml:"labels"`
	} `yaml:"filters"`
}

// LoadSeed reads, validates, and converts one project seed file. The
// returned project satisfies the config invariants: every camera config
// carries exactly one default deployment at index 0 and its dated
// windows are in canonical order.
func LoadSeed(path string, ids catalog.IDGenerator) (*model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	if err := ValidateSeed(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return seedToProject(seed, ids)
}

func seedToProject(seed Seed, ids catalog.IDGenerator) (*model.Project, error) {
	p := &model.Project{
		ID:            seed.ID,
		Name:          seed.Name,
		Timezone:      seed.Timezone,
		CameraConfigs: []model.CameraConfig{},
		Views:         []model.View{},
	}

	for _, cam := range seed.CameraConfigs {
		cfg := model.CameraConfig{
			ID: cam.ID,
			Deployments: []model.Deployment{
				model.NewDefaultDeployment(ids.Generate(), seed.Timezone),
			},
		}
		for _, dep := range cam.Deployments {
			if dep.Name == model.DefaultDeploymentName {
				// The implicit default wins; a seeded one would
				// duplicate it.
				continue
			}
			start, err := time.Parse(time.RFC3339, dep.StartDate)
			if err != nil {
				return nil, fmt.Errorf("camera %s deployment %q: invalid startDate: %w", cam.ID, dep.Name, err)
			}
			if _, err := time.LoadLocation(dep.Timezone); err != nil {
				return nil, fmt.Errorf("camera %s deployment %q: invalid timezone: %w", cam.ID, dep.Name, err)
			}
			d := model.Deployment{
				ID:       dep.ID,
				Name:     dep.Name,
				Timezone: dep.Timezone,
				Editable: true,
			}
			if d.ID == "" {
				d.ID = ids.Generate()
			}
			if dep.Editable != nil {
				d.Editable = *dep.Editable
			}
			d.StartDate = &start
			cfg.Deployments = append(cfg.Deployments, d)
		}
		cfg.Deployments = catalog.SortDeployments(cfg.Deployments)
		p.CameraConfigs = append(p.CameraConfigs, cfg)
	}

	for _, v := range seed.Views {
		view := model.View{
			ID:       v.ID,
			Name:     v.Name,
			Editable: true,
			Filters: model.Filters{
				Cameras:     v.Filters.Cameras,
				Deployments: v.Filters.Deployments,
				Labels:      v.Filters.Labels,
			},
		}
		if view.ID == "" {
			view.ID = ids.Generate()
		}
		if v.Editable != nil {
			view.Editable = *v.Editable
		}
		p.Views = append(p.Views, view)
	}

	return p, nil
}
