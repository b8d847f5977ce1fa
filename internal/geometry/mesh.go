package geometry

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// MeshData is the subset of an OBJ file the engine needs: scaled vertex
// positions and the face count.
type MeshData struct {
	Vertices []r3.Vec
	Faces    int
}

// LoadOBJ reads the vertices and faces of a Wavefront OBJ file and scales
// the vertices.
func LoadOBJ(path string, scale float64) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResourceNotFound, path, err)
	}
	defer f.Close()

	m := &MeshData{}
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: %s:%d: vertex needs 3 coordinates", ErrInvalidMesh, path, line)
			}
			var c [3]float64
			for i := range c {
				c[i], err = strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: %s:%d: %v", ErrInvalidMesh, path, line, err)
				}
			}
			m.Vertices = append(m.Vertices, r3.Scale(scale, r3.Vec{X: c[0], Y: c[1], Z: c[2]}))
		case "f":
			m.Faces++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMesh, path, err)
	}
	if len(m.Vertices) == 0 {
		return nil, fmt.Errorf("%w: %s: no vertices", ErrInvalidMesh, path)
	}
	return m, nil
}

// FindResource returns the path of name. Absolute paths are checked as-is;
// relative names are looked up in dirs in order.
func FindResource(name string, dirs ...string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrResourceNotFound, name)
		}
		return name, nil
	}
	for _, dir := range dirs {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %v)", ErrResourceNotFound, name, dirs)
}
