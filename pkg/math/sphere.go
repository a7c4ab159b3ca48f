package math

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float32
}

// SphereFromPoints computes a bounding sphere for a point cloud using
// Ritter's method. The result depends only on the order and values of
// points. An empty cloud yields the zero sphere.
func SphereFromPoints(points []Vec3) Sphere {
	if len(points) == 0 {
		return Sphere{}
	}

	// Seed with an approximate diameter: the point farthest from the first
	// point, then the point farthest from that one.
	a := farthest(points, points[0])
	b := farthest(points, a)

	s := Sphere{
		Center: a.Add(b).Scale(0.5),
		Radius: a.Distance(b) * 0.5,
	}

	// Grow to take in stragglers.
	for _, p := range points {
		d := p.Distance(s.Center)
		if d <= s.Radius {
			continue
		}
		r := (s.Radius + d) * 0.5
		s.Center = s.Center.Add(p.Sub(s.Center).Scale((r - s.Radius) / d))
		s.Radius = r
	}

	// Moving the center can leave earlier points a rounding error outside.
	for _, p := range points {
		if d := p.Distance(s.Center); d > s.Radius {
			s.Radius = d
		}
	}

	return s
}

func farthest(points []Vec3, from Vec3) Vec3 {
	best := points[0]
	bestDist := float32(-1)
	for _, p := range points {
		d := p.Sub(from)
		if dist := d.Dot(d); dist > bestDist {
			best = p
			bestDist = dist
		}
	}
	return best
}

// Contains reports whether p lies inside the sphere, allowing eps slack.
func (s Sphere) Contains(p Vec3, eps float32) bool {
	return p.Distance(s.Center) <= s.Radius+eps
}
