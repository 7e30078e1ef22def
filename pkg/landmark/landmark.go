package landmark

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
	da "github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/engine/routing"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geo"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const MAX_LANDMARKS = 64

var ErrLandmarkMismatch = errors.New("landmark file does not match the road graph")

// Landmark holds the ALT distance tables of a road graph.
type Landmark struct {
	lw        [][]float64 // distance from each landmark to every vertex
	vlw       [][]float64 // distance from every vertex to each landmark, vlw[v][i]
	landmarks []da.Index
}

func NewLandmark() *Landmark {
	return &Landmark{
		lw:        make([][]float64, 0),
		vlw:       make([][]float64, 0),
		landmarks: make([]da.Index, 0),
	}
}

func (lm *Landmark) GetLandmarks() []da.Index {
	return lm.landmarks
}

/*
planar landmark selection, section 7 of

Goldberg, A.V. and Harrelson, C. (2005) 'Computing the shortest path: A search meets graph theory',
SODA '05, pp. 156-165.

the bounding box is split into k directions around its center, for each direction the vertex farthest
along it becomes a landmark. the vertex closest to the center is added as well. duplicates are dropped.
*/
func SelectLandmarks(k int, graph *da.Graph) []da.Index {
	n := graph.NumberOfVertices()
	if n == 0 || k <= 0 {
		return []da.Index{}
	}

	box := graph.GetBoundingBox()
	centerLat := (box.GetMinLat() + box.GetMaxLat()) / 2.0
	centerLon := (box.GetMinLon() + box.GetMaxLon()) / 2.0

	seen := make(map[da.Index]struct{}, k+1)
	landmarks := make([]da.Index, 0, k+1)
	add := func(v da.Index) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		landmarks = append(landmarks, v)
	}

	thetaDif := 360.0 / float64(k)
	for i := 0; i < k; i++ {
		thetaRad := util.DegreeToRadians(thetaDif * float64(i))
		sint, cost := math.Sin(thetaRad), math.Cos(thetaRad)

		best, bestProj := da.Index(0), -math.MaxFloat64
		for v := 0; v < n; v++ {
			lat, lon := graph.GetVertexCoordinates(da.Index(v))
			proj := (lon-centerLon)*cost + (lat-centerLat)*sint
			if proj > bestProj {
				best, bestProj = da.Index(v), proj
			}
		}
		add(best)
	}

	mid, minMidDist := da.Index(0), math.MaxFloat64
	for v := 0; v < n; v++ {
		lat, lon := graph.GetVertexCoordinates(da.Index(v))
		dist := geo.HaversineMeters(lat, lon, centerLat, centerLon)
		if dist < minMidDist {
			mid, minMidDist = da.Index(v), dist
		}
	}
	add(mid)

	return landmarks
}

/*
PreprocessALT computes, for every landmark, the shortest path tree from the landmark on graph and
the shortest path tree to the landmark on the reversed graph. O(k * (n+m) log n).
*/
func (lm *Landmark) PreprocessALT(k int, graph *da.Graph, logger *zap.Logger) error {
	if k > MAX_LANDMARKS {
		return fmt.Errorf("too many landmarks, the maximum is %d", MAX_LANDMARKS)
	}
	logger.Info("computing landmarks....", zap.Int("k", k))

	landmarks := SelectLandmarks(k, graph)
	n := graph.NumberOfVertices()
	reversed := graph.Reverse()

	lw := make([][]float64, len(landmarks))
	toLandmark := make([][]float64, len(landmarks))

	g := new(errgroup.Group)
	for i, l := range landmarks {
		g.Go(func() error {
			sps, err := routing.ShortestPathTree(graph, l)
			if err != nil {
				return err
			}
			lw[i] = sps
			return nil
		})
		g.Go(func() error {
			sps, err := routing.ShortestPathTree(reversed, l)
			if err != nil {
				return err
			}
			toLandmark[i] = sps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	vlw := make([][]float64, n)
	for v := 0; v < n; v++ {
		vlw[v] = make([]float64, len(landmarks))
		for i := range landmarks {
			vlw[v][i] = toLandmark[i][v]
		}
	}

	lm.lw, lm.vlw, lm.landmarks = lw, vlw, landmarks
	logger.Info("done computing landmarks....", zap.Int("landmarks", len(landmarks)))
	return nil
}

/*
LowerBound is the tightest triangle inequality bound of dist(u, t) over all landmarks L:

	max(d(u,L) - d(t,L), d(L,t) - d(L,u), 0)

a term with an unknown landmark distance on the t side is skipped for every u, a term that is unknown on
the u side only proves that t is unreachable from u and yields pkg.INF_WEIGHT. the bound stays consistent.
*/
func (lm *Landmark) LowerBound(u, t da.Index) float64 {
	lb := 0.0
	for i := range lm.landmarks {
		if lm.vlw[t][i] < pkg.INF_WEIGHT {
			// t reaches L, so u reaches L whenever u reaches t
			if lm.vlw[u][i] >= pkg.INF_WEIGHT {
				return pkg.INF_WEIGHT
			}
			lb = math.Max(lb, lm.vlw[u][i]-lm.vlw[t][i])
		}
		if lm.lw[i][u] < pkg.INF_WEIGHT {
			// L reaches u, so L reaches t whenever u reaches t
			if lm.lw[i][t] >= pkg.INF_WEIGHT {
				return pkg.INF_WEIGHT
			}
			lb = math.Max(lb, lm.lw[i][t]-lm.lw[i][u])
		}
	}
	return lb
}

// Matches reports whether the tables were computed for a graph with n vertices.
func (lm *Landmark) Matches(n int) bool {
	return len(lm.landmarks) > 0 && len(lm.vlw) == n
}

// WriteLandmark writes the tables as bzip2 compressed text: a "k n" header, then for every landmark its
// vertex index followed by the distances from it, and a line with the distances to it.
func (lm *Landmark) WriteLandmark(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)
	k, n := len(lm.landmarks), len(lm.vlw)
	fmt.Fprintf(w, "%d %d\n", k, n)

	for i := 0; i < k; i++ {
		fmt.Fprintf(w, "%d", lm.landmarks[i])
		for v := 0; v < n; v++ {
			fmt.Fprintf(w, " %s", strconv.FormatFloat(lm.lw[i][v], 'f', -1, 64))
		}
		fmt.Fprintf(w, "\n")

		for v := 0; v < n; v++ {
			if v > 0 {
				fmt.Fprintf(w, " ")
			}
			fmt.Fprintf(w, "%s", strconv.FormatFloat(lm.vlw[v][i], 'f', -1, 64))
		}
		fmt.Fprintf(w, "\n")
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return bz.Close()
}

func ReadLandmark(filename string) (*Landmark, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	return readLandmark(bufio.NewReader(bz))
}

func readLandmark(br *bufio.Reader) (*Landmark, error) {
	header, err := readFields(br)
	if err != nil {
		return nil, err
	}
	if len(header) != 2 {
		return nil, fmt.Errorf("invalid landmark header %v", header)
	}
	k, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, err
	}
	if k < 0 || k > MAX_LANDMARKS+1 || n < 0 {
		return nil, fmt.Errorf("invalid landmark header %v", header)
	}

	landmarks := make([]da.Index, k)
	lw := make([][]float64, k)
	vlw := make([][]float64, n)
	for v := 0; v < n; v++ {
		vlw[v] = make([]float64, k)
	}

	for i := 0; i < k; i++ {
		ff, err := readFields(br)
		if err != nil {
			return nil, err
		}
		if len(ff) != n+1 {
			return nil, fmt.Errorf("landmark %d: want %d distances, got %d", i, n, len(ff)-1)
		}
		id, err := strconv.ParseUint(ff[0], 10, 32)
		if err != nil || int(id) >= n {
			return nil, fmt.Errorf("invalid landmark vertex %q", ff[0])
		}
		landmarks[i] = da.Index(id)

		lw[i] = make([]float64, n)
		for v := 0; v < n; v++ {
			if lw[i][v], err = strconv.ParseFloat(ff[v+1], 64); err != nil {
				return nil, err
			}
		}

		ff, err = readFields(br)
		if err != nil {
			return nil, err
		}
		if len(ff) != n {
			return nil, fmt.Errorf("landmark %d: want %d distances, got %d", i, n, len(ff))
		}
		for v := 0; v < n; v++ {
			if vlw[v][i], err = strconv.ParseFloat(ff[v], 64); err != nil {
				return nil, err
			}
		}
	}

	lm := NewLandmark()
	lm.lw, lm.vlw, lm.landmarks = lw, vlw, landmarks
	return lm, nil
}

func readFields(br *bufio.Reader) ([]string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, err
	}
	return strings.Fields(line), nil
}

// LoadOrCompute reads the tables at filename when they match graph, otherwise computes them and writes
// them to filename. filename may be empty.
func LoadOrCompute(filename string, k int, graph *da.Graph, logger *zap.Logger) (*Landmark, error) {
	if filename != "" {
		lm, err := ReadLandmark(filename)
		if err == nil && lm.Matches(graph.NumberOfVertices()) {
			logger.Info("Reading landmarks from ", zap.String("landmarkFilePath", filename))
			return lm, nil
		}
		if err == nil {
			err = ErrLandmarkMismatch
		}
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("landmark file is unusable, recomputing", zap.String("landmarkFilePath", filename),
				zap.Error(err))
		}
	}

	lm := NewLandmark()
	if err := lm.PreprocessALT(k, graph, logger); err != nil {
		return nil, err
	}
	if filename != "" {
		if err := lm.WriteLandmark(filename); err != nil {
			logger.Warn("failed to write landmarks", zap.String("landmarkFilePath", filename), zap.Error(err))
		}
	}
	return lm, nil
}
