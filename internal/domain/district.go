package domain

// District is a fixed administrative grouping of panchayats with a reference center.
type District struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Districts lists Kerala's fourteen districts ordered by code.
var Districts = []District{
	{Code: "01", Name: "Thiruvananthapuram", Lat: 8.5241, Lng: 76.9366},
	{Code: "02", Name: "Kollam", Lat: 8.8932, Lng: 76.6141},
	{Code: "03", Name: "Pathanamthitta", Lat: 9.2648, Lng: 76.7870},
	{Code: "04", Name: "Alappuzha", Lat: 9.4981, Lng: 76.3329},
	{Code: "05", Name: "Kottayam", Lat: 9.5916, Lng: 76.5221},
	{Code: "06", Name: "Idukki", Lat: 9.9189, Lng: 77.1025},
	{Code: "07", Name: "Ernakulam", Lat: 9.9816, Lng: 76.2999},
	{Code: "08", Name: "Thrissur", Lat: 10.5276, Lng: 76.2144},
	{Code: "09", Name: "Palakkad", Lat: 10.7867, Lng: 76.6547},
	{Code: "10", Name: "Malappuram", Lat: 11.0735, Lng: 76.0740},
	{Code: "11", Name: "Kozhikode", Lat: 11.2588, Lng: 75.7804},
	{Code: "12", Name: "Wayanad", Lat: 11.6854, Lng: 76.1320},
	{Code: "13", Name: "Kannur", Lat: 11.8745, Lng: 75.3704},
	{Code: "14", Name: "Kasaragod", Lat: 12.5101, Lng: 74.9852},
}

var (
	districtsByCode = indexDistricts(func(d District) string { return d.Code })
	districtsByName = indexDistricts(func(d District) string { return d.Name })
)

func indexDistricts(key func(District) string) map[string]District {
	m := make(map[string]District, len(Districts))
	for _, d := range Districts {
		m[key(d)] = d
	}
	return m
}

// DistrictByCode looks up a district by its two-digit code.
func DistrictByCode(code string) (District, bool) {
	d, ok := districtsByCode[code]
	return d, ok
}

// DistrictByName looks up a district by its exact name.
func DistrictByName(name string) (District, bool) {
	d, ok := districtsByName[name]
	return d, ok
}
