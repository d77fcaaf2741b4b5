// Package weather holds the domain types of the weather ETL: the record stored in the
// warehouse, its column layout, local-time rendering and the error taxonomy.
package weather

import (
	"math"
	"strconv"
)

// Columns are the stored column names, in order.
var Columns = []string{
	"city",
	"temperature",
	"humidity",
	"weather_update",
	"temperature_feels_like",
	"sunrise_time",
	"sunset_time",
	"wind_speed",
	"record_date_time",
}

// WeatherRecord is one normalized observation for one location. Every field is text.
type WeatherRecord struct {
	LocationName         string `parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TemperatureCelsius   string `parquet:"name=temperature, type=BYTE_ARRAY, convertedtype=UTF8"`
	HumidityPercent      string `parquet:"name=humidity, type=BYTE_ARRAY, convertedtype=UTF8"`
	ConditionDescription string `parquet:"name=weather_update, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FeelsLikeCelsius     string `parquet:"name=temperature_feels_like, type=BYTE_ARRAY, convertedtype=UTF8"`
	SunriseLocal         string `parquet:"name=sunrise_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	SunsetLocal          string `parquet:"name=sunset_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	WindSpeed            string `parquet:"name=wind_speed, type=BYTE_ARRAY, convertedtype=UTF8"`
	ObservedLocal        string `parquet:"name=record_date_time, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Values returns the fields in column order.
func (r WeatherRecord) Values() []string {
	return []string{
		r.LocationName,
		r.TemperatureCelsius,
		r.HumidityPercent,
		r.ConditionDescription,
		r.FeelsLikeCelsius,
		r.SunriseLocal,
		r.SunsetLocal,
		r.WindSpeed,
		r.ObservedLocal,
	}
}

// Observation is a decoded upstream reading before normalization.
type Observation struct {
	Temperature float64
	Humidity    int64
	FeelsLike   float64
	Description string
	Sunrise     int64
	Sunset      int64
	ObservedAt  int64
	WindSpeed   float64
}

// NewWeatherRecord normalizes an observation for location into a WeatherRecord.
func NewWeatherRecord(location string, o Observation) WeatherRecord {
	return WeatherRecord{
		LocationName:         location,
		TemperatureCelsius:   FormatDecimal(o.Temperature),
		HumidityPercent:      strconv.FormatInt(o.Humidity, 10),
		ConditionDescription: o.Description,
		FeelsLikeCelsius:     FormatDecimal(o.FeelsLike),
		SunriseLocal:         FormatLocal(o.Sunrise),
		SunsetLocal:          FormatLocal(o.Sunset),
		WindSpeed:            FormatDecimal(o.WindSpeed),
		ObservedLocal:        FormatLocal(o.ObservedAt),
	}
}

// FormatDecimal renders v in shortest round-trip form; integral values keep a ".0" suffix
// (28 -> "28.0", 28.5 -> "28.5").
func FormatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !math.IsInf(v, 0) && !math.IsNaN(v) && v == math.Trunc(v) {
		s += ".0"
	}
	return s
}
