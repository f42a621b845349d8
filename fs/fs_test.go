package fs

import (
	"io"
	"testing"

	"github.com/stretchr/testify/suite"
)

type FsSuite struct {
	suite.Suite
	fs Filesys
}

func TestFs(t *testing.T) {
	suite.Run(t, new(FsSuite))
}

func (suite *FsSuite) SetupTest() {
	suite.fs = MemFs()
}

func (suite *FsSuite) CreateFile(fname string, contents []byte) {
	h := suite.fs.Handle(fname)
	suite.Require().NoError(h.Open())
	n, err := h.Write(contents)
	suite.Require().NoError(err)
	suite.Require().Equal(len(contents), n, "short write")
	suite.Require().NoError(h.Close())
}

func (suite *FsSuite) ReadFile(fname string) []byte {
	h := suite.fs.Handle(fname)
	suite.Require().NoError(h.Open())
	defer h.Close()
	data, err := io.ReadAll(h)
	suite.Require().NoError(err)
	return data
}

func (suite *FsSuite) TestCreate() {
	suite.CreateFile("foo", []byte{2})
	suite.Equal([]byte{2}, suite.ReadFile("foo"),
		"file should have same contents as written")
}

func (suite *FsSuite) TestOpenCreatesFile() {
	h := suite.fs.Handle("foo")
	suite.False(h.IsOpen())
	suite.NoError(h.Open())
	suite.True(h.IsOpen())
	ok, err := suite.fs.Exists("foo")
	suite.NoError(err)
	suite.True(ok, "open should create the file")
	suite.Empty(suite.ReadFile("foo"))
}

func (suite *FsSuite) TestOpenExisting() {
	suite.CreateFile("foo", []byte{1, 2, 3})
	h := suite.fs.Handle("foo")
	suite.Require().NoError(h.Open())
	size, err := h.Size()
	suite.NoError(err)
	suite.Equal(int64(3), size, "open should not truncate")
	h.Close()
}

func (suite *FsSuite) TestClear() {
	suite.CreateFile("foo", []byte{1, 2, 3})
	h := suite.fs.Handle("foo")
	suite.Require().NoError(h.Open())
	suite.NoError(h.Clear())
	suite.True(h.IsOpen(), "clear should leave the handle open")
	_, err := h.Write([]byte{4})
	suite.NoError(err)
	suite.NoError(h.Close())
	suite.Equal([]byte{4}, suite.ReadFile("foo"),
		"clear should empty file")
}

func (suite *FsSuite) TestErase() {
	suite.CreateFile("foo", nil)
	suite.CreateFile("bar", nil)
	h := suite.fs.Handle("foo")
	suite.Require().NoError(h.Open())
	suite.NoError(h.Erase())
	suite.False(h.IsOpen())
	names, err := suite.fs.List()
	suite.NoError(err)
	suite.Equal([]string{"/bar"}, names)
	suite.NoError(h.Erase(), "erasing a missing file is not an error")
}

func (suite *FsSuite) TestList() {
	suite.CreateFile("foo", []byte{})
	suite.CreateFile("bar", []byte{})
	names, err := suite.fs.List()
	suite.NoError(err)
	suite.Equal([]string{"/bar", "/foo"}, names)
}

func (suite *FsSuite) TestClosedHandle() {
	h := suite.fs.Handle("foo")
	_, err := h.Read(make([]byte, 1))
	suite.ErrorIs(err, ErrClosed)
	_, err = h.Write([]byte{1})
	suite.ErrorIs(err, ErrClosed)
	suite.ErrorIs(h.Sync(), ErrClosed)
	suite.NoError(h.Close(), "closing a closed handle is a no-op")
}

func (suite *FsSuite) TestReadEOF() {
	suite.CreateFile("foo", []byte{1, 2})
	h := suite.fs.Handle("foo")
	suite.Require().NoError(h.Open())
	defer h.Close()
	buf := make([]byte, 4)
	n, _ := h.Read(buf)
	suite.Equal(2, n)
	_, err := h.Read(buf)
	suite.Equal(io.EOF, err)
}

func (suite *FsSuite) TestStats() {
	suite.CreateFile("foo", []byte{1, 2, 3})
	suite.ReadFile("foo")
	stats := suite.fs.GetStats()
	suite.Equal(1, stats.WriteOps)
	suite.Equal(3, stats.WriteBytes)
	suite.Equal(3, stats.ReadBytes)
}
