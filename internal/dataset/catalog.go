package dataset

import (
	"fmt"
	"strings"
)

// Variable describes one ICON model variable as published by DWD open data:
// the publisher's field name, the level group it is filed under, and the GRIB
// band the value lives in.
type Variable struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
	Band  int    `json:"band"`
}

// defaultCatalog is the set of single-level ICON variables the database is
// built from. Adding or removing a variable changes the dataset shape and
// therefore the cache fingerprint.
var defaultCatalog = []Variable{
	{ID: "cloud_cover_total", Name: "clct", Level: "single_level", Band: 1},
	{ID: "humidity_2m", Name: "relhum_2m", Level: "single_level", Band: 1},
	{ID: "precipitation_total", Name: "tot_prec", Level: "single_level", Band: 1},
	{ID: "pressure_msl", Name: "pmsl", Level: "single_level", Band: 1},
	{ID: "temperature_2m", Name: "t_2m", Level: "single_level", Band: 1},
	{ID: "wind_u_10m", Name: "u_10m", Level: "single_level", Band: 1},
	{ID: "wind_v_10m", Name: "v_10m", Level: "single_level", Band: 1},
}

// DefaultCatalog returns a copy of the built-in variable catalog.
func DefaultCatalog() []Variable {
	out := make([]Variable, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// Filename returns the publisher's dataset file name for one variable of one
// model run, e.g.
// "ICON_iko_single_level_elements_world_T_2M_2017120300_024.grib2.bz2".
func Filename(v Variable, releaseIdentifier string, step int, suffix string) string {
	return fmt.Sprintf("ICON_iko_%s_elements_world_%s_%s_%03d%s",
		v.Level, strings.ToUpper(v.Name), releaseIdentifier, step, suffix)
}
