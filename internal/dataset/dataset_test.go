package dataset

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvfmap/internal/models"
)

func newTestLoader(opts LoaderOptions) *Loader {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLoader(opts, logger)
}

const dvfHeader = "id_mutation,date_mutation,valeur_fonciere,adresse_numero,adresse_nom_voie,code_postal,code_commune,nom_commune,code_departement,id_parcelle,type_local,surface_reelle_bati,nombre_pieces_principales\n"

func TestLoadTransactions(t *testing.T) {
	csv := dvfHeader +
		"2023-1,2023-03-14,450000,12,RUE DE RIVOLI,75001,75056,Paris,75,75056000AB0123,Appartement,50,2\n" +
		"2023-2,2023-04-02,620000,,AV FOCH,,92012,Boulogne-Billancourt,,92012000CD0042,Maison,80,\n" +
		"2023-3,2023-05-20,,3,IMPASSE,93001,93001,Aubervilliers,93,93001000EF0001,Dépendance,,\n" +
		"2023-4,2023-06-01,abc,1,RUE,75002,75056,Paris,75,75056000AB0124,Appartement,30,1\n" +
		"2023-5,2023-06-01,100000,1,RUE\n" +
		"2023-6,not-a-date,300000,1,RUE,75002,75056,Paris,75,75056000AB0125,Appartement,30,1\n"

	txs, report, err := newTestLoader(LoaderOptions{}).LoadTransactions(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Report{Read: 6, Kept: 3, Skipped: 3}, report)
	require.Len(t, txs, 3)

	rooms := 2
	assert.Equal(t, models.Transaction{
		ID:           "2023-1",
		DeptCode:     "75",
		CommuneCode:  "75056",
		CommuneName:  "Paris",
		SectionCode:  "75056000AB",
		PropertyType: models.PropertyApartment,
		Value:        450000,
		Surface:      50,
		Rooms:        &rooms,
		Date:         time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC),
		Address:      "12 RUE DE RIVOLI, 75001 Paris",
	}, txs[0])

	// Department derived from the commune code, optional fields empty
	assert.Equal(t, "92", txs[1].DeptCode)
	assert.Equal(t, models.PropertyHouse, txs[1].PropertyType)
	assert.Nil(t, txs[1].Rooms)
	assert.Equal(t, "AV FOCH, Boulogne-Billancourt", txs[1].Address)

	// Kept in raw storage but not usable for statistics
	assert.Equal(t, models.PropertyOther, txs[2].PropertyType)
	assert.False(t, txs[2].IsValid())
}

func TestLoadTransactions_FrenchNumbersAndDelimiter(t *testing.T) {
	csv := "valeur_fonciere;code_commune;type_local;surface_reelle_bati\n" +
		"\"1 250 000,50\";75056;Maison;125,5\n"

	txs, report, err := newTestLoader(LoaderOptions{}).LoadTransactions(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Kept)
	require.Len(t, txs, 1)
	assert.InDelta(t, 1250000.5, txs[0].Value, 1e-9)
	assert.InDelta(t, 125.5, txs[0].Surface, 1e-9)
	assert.Equal(t, "75", txs[0].DeptCode)
	assert.Equal(t, "", txs[0].SectionCode)
}

func TestLoadTransactions_MissingColumn(t *testing.T) {
	csv := "id_mutation,valeur_fonciere,code_commune,type_local\n1,100,75056,Maison\n"

	_, _, err := newTestLoader(LoaderOptions{}).LoadTransactions(strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, _, err = newTestLoader(LoaderOptions{}).LoadTransactions(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input       string
		expected    float64
		expectError bool
	}{
		{input: "", expected: 0},
		{input: "42", expected: 42},
		{input: "42.5", expected: 42.5},
		{input: "42,5", expected: 42.5},
		{input: "1 000", expected: 1000},
		{input: "1 000,25", expected: 1000.25},
		{input: "NaN", expectError: true},
		{input: "Inf", expectError: true},
		{input: "douze", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := parseNumber(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, v, 1e-9)
		})
	}
}

const communes = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"code": "75056", "nom": "Paris"},
     "geometry": {"type": "Polygon", "coordinates": [[[2.22,48.81],[2.47,48.81],[2.47,48.90],[2.22,48.90],[2.22,48.81]]]}},
    {"type": "Feature", "properties": {"insee": 92012},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[2.22,48.82],[2.26,48.82],[2.26,48.85],[2.22,48.82]]]]}},
    {"type": "Feature", "properties": {"code": "93001", "nom": "Aubervilliers"},
     "geometry": {"type": "Point", "coordinates": [2.38, 48.91]}},
    {"type": "Feature", "properties": {"nom": "Sans code"},
     "geometry": {"type": "Polygon", "coordinates": [[[2.0,48.0],[2.1,48.0],[2.1,48.1],[2.0,48.0]]]}},
    {"type": "Feature", "properties": {"code": "94028"}, "geometry": null}
  ]
}`

func TestLoadTerritories(t *testing.T) {
	territories, report, err := newTestLoader(LoaderOptions{}).LoadTerritories(strings.NewReader(communes), models.ScaleCommune)
	require.NoError(t, err)
	assert.Equal(t, Report{Read: 5, Kept: 2, Skipped: 3}, report)
	require.Len(t, territories, 2)

	assert.Equal(t, "75056", territories[0].Code)
	assert.Equal(t, "Paris", territories[0].Name)
	assert.Equal(t, models.ScaleCommune, territories[0].Scale)
	assert.IsType(t, orb.Polygon{}, territories[0].Geometry)

	// Numeric code, name defaults to the code
	assert.Equal(t, "92012", territories[1].Code)
	assert.Equal(t, "92012", territories[1].Name)
	assert.IsType(t, orb.MultiPolygon{}, territories[1].Geometry)
}

func TestLoadTerritories_SingleFeature(t *testing.T) {
	feature := `{"type": "Feature", "properties": {"code": "75", "nom": "Paris"},
	  "geometry": {"type": "Polygon", "coordinates": [[[2.22,48.81],[2.47,48.81],[2.47,48.90],[2.22,48.81]]]}}`

	territories, report, err := newTestLoader(LoaderOptions{}).LoadTerritories(strings.NewReader(feature), models.ScaleDepartment)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Kept)
	assert.Equal(t, "Paris", territories[0].Name)
}

func TestLoadTerritories_Invalid(t *testing.T) {
	loader := newTestLoader(LoaderOptions{})

	_, _, err := loader.LoadTerritories(strings.NewReader(`{"type": "Point", "coordinates": [2, 48]}`), models.ScaleCommune)
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)

	_, _, err = loader.LoadTerritories(strings.NewReader(`not json`), models.ScaleCommune)
	assert.Error(t, err)
}

func TestLoadTerritories_Simplify(t *testing.T) {
	// A square with a nearly collinear extra vertex on its southern edge
	doc := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"code": "A"},
	   "geometry": {"type": "Polygon", "coordinates": [[[0,0],[0.5,0.00001],[1,0],[1,1],[0,1],[0,0]]]}},
	  {"type": "Feature", "properties": {"code": "B"},
	   "geometry": {"type": "Polygon", "coordinates": [[[0,0],[0.001,0],[0.001,0.001],[0,0]]]}}
	]}`

	territories, _, err := newTestLoader(LoaderOptions{SimplifyTolerance: 0.01}).LoadTerritories(strings.NewReader(doc), models.ScaleSection)
	require.NoError(t, err)
	require.Len(t, territories, 2)

	assert.Len(t, territories[0].Geometry.(orb.Polygon)[0], 5, "collinear vertex removed")
	assert.Len(t, territories[1].Geometry.(orb.Polygon)[0], 4, "tiny polygon kept as is")
}

func writeShapefile(t *testing.T, dir string) string {
	t.Helper()
	base := filepath.Join(dir, "sections")

	w, err := shp.Create(base+".shp", shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("CODE", 16),
		shp.StringField("NOM", 32),
	}))

	// Clockwise outer ring with a counter-clockwise hole
	outer := []shp.Point{{X: 2.30, Y: 48.80}, {X: 2.30, Y: 48.90}, {X: 2.40, Y: 48.90}, {X: 2.40, Y: 48.80}, {X: 2.30, Y: 48.80}}
	hole := []shp.Point{{X: 2.34, Y: 48.84}, {X: 2.36, Y: 48.84}, {X: 2.36, Y: 48.86}, {X: 2.34, Y: 48.86}, {X: 2.34, Y: 48.84}}
	withHole := shp.Polygon(*shp.NewPolyLine([][]shp.Point{outer, hole}))
	row := w.Write(&withHole)
	require.NoError(t, w.WriteAttribute(int(row), 0, "75056000AB"))
	require.NoError(t, w.WriteAttribute(int(row), 1, "Section AB"))

	// Two outer rings make a multipolygon, no name
	second := []shp.Point{{X: 2.50, Y: 48.80}, {X: 2.50, Y: 48.81}, {X: 2.51, Y: 48.81}, {X: 2.51, Y: 48.80}, {X: 2.50, Y: 48.80}}
	multi := shp.Polygon(*shp.NewPolyLine([][]shp.Point{outer, second}))
	row = w.Write(&multi)
	require.NoError(t, w.WriteAttribute(int(row), 0, "75056000AC"))

	// No code
	row = w.Write(&multi)
	require.NoError(t, w.WriteAttribute(int(row), 1, "Orpheline"))
	w.Close()

	// go-shp v0.1.1 writes the table as "sectionsdbf"
	if _, err := os.Stat(base + "dbf"); err == nil {
		require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	}
	return base + ".shp"
}

func TestLoadTerritoriesShapefile(t *testing.T) {
	path := writeShapefile(t, t.TempDir())
	loader := newTestLoader(LoaderOptions{})

	territories, report, err := loader.LoadTerritoriesShapefile(path, models.ScaleSection, "code", "nom")
	require.NoError(t, err)
	assert.Equal(t, Report{Read: 3, Kept: 2, Skipped: 1}, report)
	require.Len(t, territories, 2)

	assert.Equal(t, "75056000AB", territories[0].Code)
	assert.Equal(t, "Section AB", territories[0].Name)
	poly, ok := territories[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.Len(t, poly, 2, "hole attached to its outer ring")

	assert.Equal(t, "75056000AC", territories[1].Code)
	assert.Equal(t, "75056000AC", territories[1].Name)
	assert.IsType(t, orb.MultiPolygon{}, territories[1].Geometry)

	_, _, err = loader.LoadTerritoriesShapefile(path, models.ScaleSection, "id_section", "")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

const lines = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"mode": "Métro", "indice_lig": "1", "colourweb_hexa": "ffcd00"},
   "geometry": {"type": "LineString", "coordinates": [[2.27,48.88],[2.45,48.84]]}},
  {"type": "Feature", "properties": {"rer": 1, "ligne": "A", "couleur": "#E2231A"},
   "geometry": {"type": "LineString", "coordinates": [[2.1,48.9],[2.6,48.8]]}},
  {"type": "Feature", "properties": {"tramway": "1", "train": "1", "indice_lig": "T4", "color": "pink"},
   "geometry": {"type": "LineString", "coordinates": [[2.5,48.9],[2.55,48.93]]}},
  {"type": "Feature", "properties": {"mode": "TRAIN"},
   "geometry": {"type": "LineString", "coordinates": [[2.3,48.8],[2.4,48.7]]}}
]}`

func TestLoadTransitLines(t *testing.T) {
	got, report, err := newTestLoader(LoaderOptions{}).LoadTransitLines(strings.NewReader(lines))
	require.NoError(t, err)
	assert.Equal(t, Report{Read: 4, Kept: 3, Skipped: 1}, report)
	assert.Equal(t, []models.TransitLine{
		{Mode: models.ModeMetro, LineID: "1", Color: "#FFCD00"},
		{Mode: models.ModeRER, LineID: "A", Color: "#E2231A"},
		{Mode: models.ModeOther, LineID: "T4", Color: ""},
	}, got)
}

const stops = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"mode": "METRO", "indice_lig": "1"},
   "geometry": {"type": "Point", "coordinates": [2.3522, 48.8566]}},
  {"type": "Feature", "properties": {"mode": "RER", "indice_lig": "B"},
   "geometry": {"type": "Point", "coordinates": [2.3470, 48.8620]}},
  {"type": "Feature", "properties": {"mode": "RER"},
   "geometry": {"type": "Point", "coordinates": [2.3, 48.8]}},
  {"type": "Feature", "properties": {"mode": "METRO", "indice_lig": "4"},
   "geometry": {"type": "LineString", "coordinates": [[2.3, 48.8],[2.31, 48.81]]}},
  {"type": "Feature", "properties": {"mode": "METRO", "indice_lig": "14"}, "geometry": null}
]}`

func TestLoadTransitStops(t *testing.T) {
	got, report, err := newTestLoader(LoaderOptions{}).LoadTransitStops(strings.NewReader(stops))
	require.NoError(t, err)
	assert.Equal(t, Report{Read: 5, Kept: 2, Skipped: 3}, report)
	assert.Equal(t, []models.TransitStop{
		{Position: orb.Point{2.3522, 48.8566}, Mode: models.ModeMetro, LineID: "1"},
		{Position: orb.Point{2.3470, 48.8620}, Mode: models.ModeRER, LineID: "B"},
	}, got)
}

func TestReport_String(t *testing.T) {
	assert.Equal(t, "read=3 kept=2 skipped=1", Report{Read: 3, Kept: 2, Skipped: 1}.String())
}
