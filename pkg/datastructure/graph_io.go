package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
)

// WriteGraph writes a bzip2 compressed text snapshot of the graph:
//
//	numVertices numEdges
//	id lat lon          (one line per vertex)
//	from to length hw   (one line per edge)
func (g *Graph) WriteGraph(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	if err := g.writeGraph(bz); err != nil {
		bz.Close()
		return err
	}
	return bz.Close()
}

func (g *Graph) writeGraph(wr io.Writer) error {
	w := bufio.NewWriter(wr)

	fmt.Fprintf(w, "%d %d\n", len(g.vertices), g.NumberOfEdges())

	for _, v := range g.vertices {
		latF := strconv.FormatFloat(v.lat, 'f', -1, 64)
		lonF := strconv.FormatFloat(v.lon, 'f', -1, 64)
		fmt.Fprintf(w, "%d %s %s\n", v.id, latF, lonF)
	}

	g.ForEdges(func(e *Edge) {
		lengthF := strconv.FormatFloat(e.length, 'f', -1, 64)
		fmt.Fprintf(w, "%d %d %s %d\n", e.from, e.to, lengthF, e.hwType)
	})

	return w.Flush()
}

func fields(s string) []string {
	return strings.Fields(s)
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func ReadGraph(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	return readGraph(bz)
}

func readGraph(r io.Reader) (*Graph, error) {
	br := bufio.NewReader(r)

	line, err := readLine(br)
	if err != nil {
		return nil, fmt.Errorf("read graph header: %w", err)
	}
	header := fields(line)
	if len(header) != 2 {
		return nil, fmt.Errorf("invalid graph header: %q", line)
	}
	numV, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, err
	}
	numE, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, err
	}

	vertices := make([]Vertex, 0, numV)
	for i := 0; i < numV; i++ {
		line, err = readLine(br)
		if err != nil {
			return nil, fmt.Errorf("read vertex %d: %w", i, err)
		}
		v, err := parseVertex(line)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}

	edges := make([]Edge, 0, numE)
	for i := 0; i < numE; i++ {
		line, err = readLine(br)
		if err != nil {
			return nil, fmt.Errorf("read edge %d: %w", i, err)
		}
		e, err := parseEdge(line)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}

	return NewGraph(vertices, edges), nil
}

func parseVertex(line string) (Vertex, error) {
	ff := fields(line)
	if len(ff) != 3 {
		return Vertex{}, fmt.Errorf("invalid vertex line: %q", line)
	}
	id, err := strconv.ParseInt(ff[0], 10, 64)
	if err != nil {
		return Vertex{}, err
	}
	lat, err := strconv.ParseFloat(ff[1], 64)
	if err != nil {
		return Vertex{}, err
	}
	lon, err := strconv.ParseFloat(ff[2], 64)
	if err != nil {
		return Vertex{}, err
	}
	return NewVertex(id, lat, lon), nil
}

func parseEdge(line string) (Edge, error) {
	ff := fields(line)
	if len(ff) != 4 {
		return Edge{}, fmt.Errorf("invalid edge line: %q", line)
	}
	from, err := strconv.ParseInt(ff[0], 10, 64)
	if err != nil {
		return Edge{}, err
	}
	to, err := strconv.ParseInt(ff[1], 10, 64)
	if err != nil {
		return Edge{}, err
	}
	length, err := strconv.ParseFloat(ff[2], 64)
	if err != nil {
		return Edge{}, err
	}
	hw, err := strconv.ParseUint(ff[3], 10, 8)
	if err != nil {
		return Edge{}, err
	}
	return NewEdgeWithHighway(from, to, length, pkg.OsmHighwayType(hw)), nil
}
