package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-blastracer/pkg/core"
	"github.com/df07/go-blastracer/pkg/geometry"
	"github.com/df07/go-blastracer/pkg/renderer"
	"github.com/df07/go-blastracer/pkg/scene"
)

// InspectResponse describes what the camera ray through one pixel hits
type InspectResponse struct {
	Hit        bool           `json:"hit"`
	Index      int            `json:"index"` // Primitive index in the scene
	Kind       string         `json:"kind"`
	Point      [3]float64     `json:"point"`
	Normal     [3]float64     `json:"normal"`
	Distance   float64        `json:"distance"`
	Color      string         `json:"color"`  // Surface color
	Albedo     float64        `json:"albedo"`
	Shaded     string         `json:"shaded"` // Final pixel color
	Properties map[string]any `json:"properties"`
}

// inspectPixel casts the camera ray through a pixel and describes the
// nearest hit
func inspectPixel(sceneObj *scene.Scene, camera *renderer.Camera, pixelX, pixelY int) InspectResponse {
	ray := camera.Ray(pixelX, pixelY)
	hit, isHit := sceneObj.Trace(ray)
	if !isHit {
		return InspectResponse{Hit: false, Index: -1}
	}

	primitive := sceneObj.Primitive(hit.Index)
	point := ray.At(hit.Distance)
	normal := primitive.SurfaceNormal(point)
	kind, properties := extractGeometryInfo(primitive)

	return InspectResponse{
		Hit:        true,
		Index:      hit.Index,
		Kind:       kind,
		Point:      vecArray(point),
		Normal:     vecArray(normal),
		Distance:   hit.Distance,
		Color:      hexColor(primitive.Color()),
		Albedo:     primitive.Albedo(),
		Shaded:     hexColor(renderer.Shade(sceneObj, ray, hit)),
		Properties: properties,
	}
}

// extractGeometryInfo describes the shape of a primitive
func extractGeometryInfo(primitive geometry.Primitive) (string, map[string]any) {
	properties := make(map[string]any)

	switch geom := primitive.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		return scene.KindSphere, properties
	case *geometry.Plane:
		properties["point"] = vecArray(geom.Point)
		properties["normal"] = vecArray(geom.Normal)
		return scene.KindPlane, properties
	default:
		return "unknown", properties
	}
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// handleInspect handles pixel inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, sceneObj, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	camera, err := renderer.NewCamera(req.Width, req.Height, req.FOV)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sceneObj, camera, pixelX, pixelY))
}
