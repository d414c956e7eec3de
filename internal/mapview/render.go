package mapview

import (
	"fmt"
	"html/template"
	"io"
)

// placeholder is shown when an embedded photo fails to decode.
const placeholder = "data:image/svg+xml;utf8,<svg xmlns='http://www.w3.org/2000/svg' width='160' height='120'><rect width='100%' height='100%' fill='%23ddd'/><text x='50%' y='50%' text-anchor='middle' fill='%23666'>нет фото</text></svg>"

var page = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Фото на карте</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; } .popup img { width: 160px; }</style>
</head>
<body>
<div id="map"></div>
<script>
var markers = {{.Markers}};
var placeholder = {{.Placeholder}};
var map = L.map('map');
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap'
}).addTo(map);
var bounds = [];
markers.forEach(function (m) {
  var box = document.createElement('div');
  box.className = 'popup';
  var img = document.createElement('img');
  img.onerror = function () { img.onerror = null; img.src = placeholder; };
  img.src = m.src;
  var caption = document.createElement('pre');
  caption.textContent = m.label;
  box.appendChild(img);
  box.appendChild(caption);
  L.marker([m.lat, m.lon]).addTo(map).bindPopup(box);
  bounds.push([m.lat, m.lon]);
});
if (bounds.length > 0) {
  map.fitBounds(bounds, { maxZoom: 16 });
} else {
  map.setView([55.75, 37.62], 5);
}
</script>
</body>
</html>
`))

// Render writes a standalone Leaflet document with one marker per photo.
func Render(w io.Writer, markers []Marker) error {
	if markers == nil {
		markers = []Marker{}
	}
	data := struct {
		Markers     []Marker
		Placeholder string
	}{markers, placeholder}
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}
	return nil
}
