package models

import "sort"

// Region vùng (región) cấp cao nhất của dữ liệu.
type Region struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// Regions danh sách tĩnh 16 regiones de Chile.
var Regions = []Region{
	{"region-metropolitana-de-santiago", "Región Metropolitana de Santiago"},
	{"valparaiso", "Valparaíso"},
	{"libertador-general-bernardo-o-higgins", "Libertador General Bernardo O’Higgins"},
	{"maule", "Maule"},
	{"nuble", "Ñuble"},
	{"biobio", "Biobío"},
	{"la-araucania", "La Araucanía"},
	{"los-rios", "Los Ríos"},
	{"los-lagos", "Los Lagos"},
	{"aysen-del-general-carlos-ibanez-del-campo", "Aysén del General Carlos Ibáñez del Campo"},
	{"magallanes-y-de-la-antartica-chilena", "Magallanes y de la Antártica Chilena"},
	{"arica-y-parinacota", "Arica y Parinacota"},
	{"tarapaca", "Tarapacá"},
	{"antofagasta", "Antofagasta"},
	{"atacama", "Atacama"},
	{"coquimbo", "Coquimbo"},
}

// FindRegion tìm region theo slug
func FindRegion(slug string) (Region, bool) {
	for _, r := range Regions {
		if r.Slug == slug {
			return r, true
		}
	}
	return Region{}, false
}

func sortStrings(s []string) { sort.Strings(s) }
