package environment

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/texture"
)

// EquirectDirection maps a direction to the coordinate of an equirectangular panorama:
// longitude along u with -z at the center, latitude along v with the zenith at v = 0.
//
// Parameters:
//   - dir: a unit direction
//
// Returns:
//   - common.Vec2: the panorama coordinate
func EquirectDirection(dir common.Vec3) common.Vec2 {
	lon := math32.Atan2(dir[0], -dir[2])
	lat := math32.Asin(common.Clamp(dir[1], -1, 1))
	return common.Vec2{0.5 + lon/(2*math32.Pi), 0.5 - lat/math32.Pi}
}

// FromEquirect projects an equirectangular panorama onto a cube map. Each face is
// converted by its own task on a worker pool; faces share no texels.
//
// Parameters:
//   - img: the panorama, twice as wide as tall by convention
//   - faceSize: the edge length of each output face
//   - workers: the maximum number of concurrent face conversions, at least 1
//
// Returns:
//   - *Cubemap: the projected cube map
//   - error: an error if the face size is not positive or any face fails
func FromEquirect(img image.Image, faceSize, workers int) (*Cubemap, error) {
	if faceSize <= 0 {
		return nil, fmt.Errorf("environment: face size must be positive, got %d", faceSize)
	}
	src := texture.FromImage(img)
	cube := NewCubemap(faceSize)
	pool := worker.NewDynamicWorkerPool(max(1, workers), FaceCount, 1*time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error
	for f := range FaceCount {
		face := Face(f)
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: f,
			Do: func() (any, error) {
				defer wg.Done()
				if err := projectFace(src, cube.Faces[face], face); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return nil, err
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	pool.Stop()

	if len(errs) > 0 {
		return nil, errs[0]
	}
	common.Logger().Debug("environment: equirect projected", "src_w", src.Width, "src_h", src.Height, "face_size", faceSize)
	return cube, nil
}

func projectFace(src, dst *texture.Texture, face Face) error {
	if dst.Width != dst.Height {
		return fmt.Errorf("environment: face %s is %dx%d, not square", face, dst.Width, dst.Height)
	}
	size := float32(dst.Width)
	for y := range dst.Height {
		for x := range dst.Width {
			uv := common.Vec2{(float32(x) + 0.5) / size, (float32(y) + 0.5) / size}
			dir := FaceDirection(face, uv).Normalize()
			eq := EquirectDirection(dir)
			dst.Set(x, y, sampleEquirect(src, eq))
		}
	}
	return nil
}

// sampleEquirect wraps horizontally and clamps vertically.
func sampleEquirect(src *texture.Texture, uv common.Vec2) common.Vec4 {
	fx := uv[0]*float32(src.Width) - 0.5
	fy := common.Clamp(uv[1]*float32(src.Height)-0.5, 0, float32(src.Height-1))
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	wrap := func(x int) int {
		x %= src.Width
		if x < 0 {
			x += src.Width
		}
		return x
	}
	xa, xb := wrap(x0), wrap(x0+1)
	ya, yb := y0, min(y0+1, src.Height-1)

	c00 := src.At(xa, ya, texture.AddressClamp)
	c10 := src.At(xb, ya, texture.AddressClamp)
	c01 := src.At(xa, yb, texture.AddressClamp)
	c11 := src.At(xb, yb, texture.AddressClamp)
	top := c00.Scale(1 - tx).Add(c10.Scale(tx))
	bottom := c01.Scale(1 - tx).Add(c11.Scale(tx))
	return top.Scale(1 - ty).Add(bottom.Scale(ty))
}
