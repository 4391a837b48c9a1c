package usecases

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abelzeko/weather-recorder/internal/entities"
)

// ErrMissingField means the payload lacks one of the fixed extraction paths
// or has a different nesting/type there.
var ErrMissingField = errors.New("missing field in weather payload")

const (
	pathTemperature = "forecast.temp"
	pathHumidity    = "forecast.humidity"
	pathWindSpeed   = "wind.speed"
	pathDescription = "weather.description"
)

// ExtractReading pulls the four recorded values out of the payload. Any
// missing key fails the whole extraction; no partial reading is returned.
func ExtractReading(payload *entities.Payload) (entities.WeatherReading, error) {
	if payload == nil {
		return entities.WeatherReading{}, fmt.Errorf("%w: empty payload", ErrMissingField)
	}
	doc := gjson.ParseBytes(payload.Raw)

	temp, err := lookup(doc, pathTemperature, gjson.Number)
	if err != nil {
		return entities.WeatherReading{}, err
	}
	humidity, err := lookup(doc, pathHumidity, gjson.Number)
	if err != nil {
		return entities.WeatherReading{}, err
	}
	// humidity is an INTEGER column; fractions and out-of-range values would
	// be altered by the int64 conversion.
	if h := humidity.Num; h != math.Trunc(h) || h < math.MinInt64 || h >= math.MaxInt64 {
		return entities.WeatherReading{}, fmt.Errorf("%w: %s is %s, want a whole number", ErrMissingField, pathHumidity, humidity.Raw)
	}
	wind, err := lookup(doc, pathWindSpeed, gjson.Number)
	if err != nil {
		return entities.WeatherReading{}, err
	}
	desc, err := lookup(doc, pathDescription, gjson.String)
	if err != nil {
		return entities.WeatherReading{}, err
	}

	return entities.WeatherReading{
		Temperature: temp.Float(),
		Humidity:    int64(humidity.Num),
		WindSpeed:   wind.Float(),
		Description: desc.String(),
	}, nil
}

func lookup(doc gjson.Result, path string, want gjson.Type) (gjson.Result, error) {
	v := getLast(doc, path)
	if !v.Exists() {
		return v, fmt.Errorf("%w: %s", ErrMissingField, path)
	}
	if v.Type != want {
		return v, fmt.Errorf("%w: %s is %s, want %s", ErrMissingField, path, v.Type, want)
	}
	return v, nil
}

// getLast walks a dotted path through nested objects. When a key repeats
// within an object the last occurrence wins, the way encoding/json decodes it.
func getLast(doc gjson.Result, path string) gjson.Result {
	cur := doc
	for _, key := range strings.Split(path, ".") {
		if !cur.IsObject() {
			return gjson.Result{}
		}
		var next gjson.Result
		cur.ForEach(func(k, v gjson.Result) bool {
			if k.String() == key {
				next = v
			}
			return true
		})
		cur = next
	}
	return cur
}
