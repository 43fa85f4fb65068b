// Package catalog reads the prop catalog and tracks which items the brush
// is currently painting with.
package catalog

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"prop-brush/internal/logging"
)

// xmlCatalog matches the catalog XML schema:
//
//	<Catalog>
//	  <Group Name="rocks" Tag="rock">
//	    <Item Name="Boulder" Prefab="props/boulder" Height="1.5" Footprint="0.8" Tags="large"/>
//	  </Group>
//	</Catalog>
type xmlCatalog struct {
	Groups []xmlGroup `xml:"Group"`
}

type xmlGroup struct {
	Name  string    `xml:"Name,attr"`
	Tag   string    `xml:"Tag,attr"`
	Items []xmlItem `xml:"Item"`
}

type xmlItem struct {
	Name      string `xml:"Name,attr"`
	Prefab    string `xml:"Prefab,attr"`
	Height    string `xml:"Height,attr"`
	Footprint string `xml:"Footprint,attr"`
	Tags      string `xml:"Tags,attr"`
}

// Load reads a catalog XML file. Items without a prefab or with unparsable
// numbers are skipped.
func Load(xmlPath string) (*Catalog, error) {
	raw, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", xmlPath, err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", xmlPath, err)
	}
	return c, nil
}

// Parse decodes catalog XML.
func Parse(raw []byte) (*Catalog, error) {
	var doc xmlCatalog
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	log := logging.Logger()
	var items []Item
	for _, g := range doc.Groups {
		for _, xi := range g.Items {
			if xi.Prefab == "" {
				continue
			}
			it := Item{
				Name:      xi.Name,
				Prefab:    xi.Prefab,
				Group:     g.Name,
				Footprint: DefaultFootprint,
			}
			if it.Name == "" {
				it.Name = xi.Prefab
			}
			if g.Tag != "" {
				it.Tags = append(it.Tags, g.Tag)
			}
			for _, t := range strings.Split(xi.Tags, ",") {
				if t = strings.TrimSpace(t); t != "" {
					it.Tags = append(it.Tags, t)
				}
			}

			if xi.Height != "" {
				h, err := strconv.ParseFloat(xi.Height, 64)
				if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
					log.Warn("catalog: bad height, item skipped", "item", it.Name, "height", xi.Height)
					continue
				}
				h = max(h, 0)
				it.Height = &h
			}
			if xi.Footprint != "" {
				f, err := strconv.ParseFloat(xi.Footprint, 64)
				if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
					log.Warn("catalog: bad footprint, item skipped", "item", it.Name, "footprint", xi.Footprint)
					continue
				}
				if f > 0 {
					it.Footprint = f
				}
			}
			items = append(items, it)
		}
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return &Catalog{Items: items}, nil
}
